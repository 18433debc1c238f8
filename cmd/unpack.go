package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/spritepack/internal/workspace"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <manifest>",
	Short: "Extract every frame of a sprite sheet",
	Long: `Read a manifest and cut each frame out of its sheet image, undoing rotation
and trimming. Frames are written as PNG files named after the frame, or
bundled into one zip archive with --zip.

The sheet image defaults to the "image" entry of the manifest, resolved
relative to the manifest's directory.

Examples:
  spritepack unpack out/sprite.json -o frames
  spritepack unpack hero.plist --image hero@2x.png --zip`,
	Args: cobra.ExactArgs(1),
	RunE: runUnpack,
}

func init() {
	rootCmd.AddCommand(unpackCmd)

	unpackCmd.Flags().StringP("out", "o", ".", "output directory")
	unpackCmd.Flags().String("image", "", "sheet image (default: taken from the manifest)")
	unpackCmd.Flags().Bool("zip", false, "write frames into a single zip archive")
	unpackCmd.Flags().String("notify", "", "URL notified after each written file")

	for _, name := range []string{"out", "image", "zip", "notify"} {
		viper.BindPFlag("unpack."+name, unpackCmd.Flags().Lookup(name))
	}
}

func runUnpack(cmd *cobra.Command, args []string) error {
	ws := newWorkspace(viper.GetString("unpack.notify"))
	written, err := ws.Unpack(cmd.Context(), workspace.UnpackOptions{
		Manifest: args[0],
		Image:    viper.GetString("unpack.image"),
		OutDir:   viper.GetString("unpack.out"),
		Zip:      viper.GetBool("unpack.zip"),
	})
	if err != nil {
		return err
	}

	printWritten(cmd, written)
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/spritepack/internal/atlas"
	"github.com/kiesman99/spritepack/internal/workspace"
	"github.com/kiesman99/spritepack/pkg/pack"
	"github.com/kiesman99/spritepack/pkg/sheet"
)

var packCmd = &cobra.Command{
	Use:   "pack <file|dir>...",
	Short: "Pack images into a sprite sheet and manifest",
	Long: `Pack every image given on the command line, or found directly inside a
given directory, into one sprite sheet. The sheet is written as PNG next to
a manifest whose extension selects the format.

Examples:
  spritepack pack ./sprites -o out
  spritepack pack a.png b.png --algorithm simple --padding 2
  spritepack pack ./sprites --max-width 1024 --max-height 1024 --rotate --logic max-edge`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)

	defaults := atlas.DefaultOptions()

	packCmd.Flags().StringP("out", "o", ".", "output directory")
	packCmd.Flags().StringP("format", "f", defaults.ManifestFormat, "manifest format (json|plist)")
	packCmd.Flags().String("name", defaults.ImageName, "sheet image file name")
	packCmd.Flags().String("pixel-format", defaults.PixelFormat, "pixel format recorded in the manifest")
	packCmd.Flags().StringP("algorithm", "a", string(defaults.Pack.Algorithm), "packing algorithm (maxrects|simple)")
	packCmd.Flags().String("logic", string(defaults.Pack.Logic), "maxrects free-rectangle scoring (max-area|max-edge)")
	packCmd.Flags().IntP("padding", "p", 0, "gap between sprites in pixels")
	packCmd.Flags().Int("border", 0, "margin between sprites and the sheet edge (maxrects)")
	packCmd.Flags().Int("max-width", pack.DefaultMaxSize, "maximum sheet width")
	packCmd.Flags().Int("max-height", pack.DefaultMaxSize, "maximum sheet height")
	packCmd.Flags().Bool("pot", false, "round sheet dimensions up to powers of two")
	packCmd.Flags().Bool("square", false, "force a square sheet")
	packCmd.Flags().Bool("rotate", false, "allow 90° rotation (maxrects)")
	packCmd.Flags().Bool("trim", false, "crop transparent borders before packing")
	packCmd.Flags().String("notify", "", "URL notified after each written file")

	for _, name := range []string{
		"out", "format", "name", "pixel-format", "algorithm", "logic", "padding", "border",
		"max-width", "max-height", "pot", "square", "rotate", "trim", "notify",
	} {
		viper.BindPFlag("pack."+name, packCmd.Flags().Lookup(name))
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	opts, err := packOptionsFromConfig()
	if err != nil {
		return err
	}

	ws := newWorkspace(viper.GetString("pack.notify"))
	written, err := ws.Pack(cmd.Context(), args, workspace.PackOptions{
		Atlas:  opts,
		OutDir: viper.GetString("pack.out"),
	})
	if err != nil {
		return err
	}

	printWritten(cmd, written)
	return nil
}

func packOptionsFromConfig() (atlas.Options, error) {
	opts := atlas.DefaultOptions()

	algo, err := pack.ParseAlgorithm(viper.GetString("pack.algorithm"))
	if err != nil {
		return opts, err
	}
	logic, err := pack.ParseLogic(viper.GetString("pack.logic"))
	if err != nil {
		return opts, err
	}

	padding := viper.GetInt("pack.padding")
	border := viper.GetInt("pack.border")
	if padding < 0 || border < 0 {
		return opts, sheet.Errorf(sheet.ErrInvalidConfig, "padding and border must not be negative")
	}

	opts.Pack = pack.Options{
		Algorithm:     algo,
		Logic:         logic,
		Padding:       padding,
		Border:        border,
		MaxWidth:      viper.GetInt("pack.max-width"),
		MaxHeight:     viper.GetInt("pack.max-height"),
		PowerOfTwo:    viper.GetBool("pack.pot"),
		Square:        viper.GetBool("pack.square"),
		AllowRotation: viper.GetBool("pack.rotate"),
	}
	opts.Trim = viper.GetBool("pack.trim")
	opts.ManifestFormat = viper.GetString("pack.format")
	opts.ImageName = viper.GetString("pack.name")
	opts.PixelFormat = viper.GetString("pack.pixel-format")

	return opts, nil
}

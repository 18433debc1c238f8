package cmd

import (
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a manifest between formats",
	Long: `Parse a manifest and write it again in the format selected by the output
file's extension. Unknown output extensions fall back to JSON.

Example:
  spritepack convert sheet.plist sheet.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newWorkspace("").Convert(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		printWritten(cmd, args[1:])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

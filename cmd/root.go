package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/spritepack/internal/atlas"
	"github.com/kiesman99/spritepack/internal/host"
	"github.com/kiesman99/spritepack/internal/logging"
	"github.com/kiesman99/spritepack/internal/workspace"
)

// version is reported by the health endpoint and overridden at build time.
var version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spritepack",
	Short: "Pack images into sprite sheets and unpack them again",
	Long: `spritepack packs a set of images into a single sprite sheet and writes a
manifest (JSON or cocos2d PLIST) describing where each frame lives. It can
also reverse the process, cutting every frame back out of a sheet.

Examples:
  # Pack a directory of sprites into sprite.png + sprite.json
  spritepack pack ./sprites -o out

  # Rotated, trimmed, power-of-two sheet with a PLIST manifest
  spritepack pack ./sprites --rotate --trim --pot -f plist --name hero.png -o out

  # Extract frames again, zipped
  spritepack unpack out/hero.plist -o frames --zip

  # Convert a manifest between formats
  spritepack convert out/hero.plist out/hero.json

  # Start HTTP server
  spritepack serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if viper.GetBool("verbose") {
			level = log.DebugLevel
		}
		logger := logging.New(os.Stderr, level)
		log.SetDefault(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spritepack.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log per-frame progress")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".spritepack" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".spritepack")
	}

	// SPRITEPACK_PACK_MAX_WIDTH overrides pack.max-width, and so on.
	viper.SetEnvPrefix("SPRITEPACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newWorkspace builds a workspace on the OS file system. A non-empty
// notifyURL posts every written path to that URL.
func newWorkspace(notifyURL string) *workspace.Workspace {
	var notifier host.Notifier
	if notifyURL != "" {
		notifier = host.NewHook(notifyURL)
	}
	return workspace.New(host.OS(notifier), atlas.New(nil))
}

func printWritten(cmd *cobra.Command, paths []string) {
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
}

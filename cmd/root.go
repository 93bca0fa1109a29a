package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "xcataloger",
		Short: "Asset catalog tool for app icons and launch images",
		Long: `xcataloger manages app icon and launch image asset catalogs.

It generates placeholder images for every slot of a slot config, converts a single
source image into every required size, and fills a catalog's Contents.json with
the images of a directory whose sizes match the required slots.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogging(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default $"+envLogLevel+" or info)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newMakeCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

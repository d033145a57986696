// Package cmd defines and implements the CLI commands for the filehound
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filehound/filehound/internal/logging"
	"github.com/filehound/filehound/pkg/config"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filehound",
		Short: "A concurrent website crawler that downloads files by extension.",
		Long: `filehound crawls a website starting from a seed URL, follows
hyperlinks within the configured domain scope, and downloads every resource
matching a target file extension. It respects robots.txt and can
authenticate through login forms encountered along the way.`,

		// Runs after flags are parsed so the logger honors --log-level.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := viper.GetString("logging.level")
			toFile := viper.GetBool("logging.file")
			if err := logging.Init(level, toFile); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			return nil
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARNING, ERROR)")
	cmd.PersistentFlags().Bool("log-file", false, "write logs to a timestamped file instead of stderr")
	bindFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	bindFlag("logging.file", cmd.PersistentFlags().Lookup("log-file"))

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bidsmap/bidsmap/internal/version"
	"github.com/bidsmap/bidsmap/pkg/logging"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "bidsmap",
		Short: "Catalog tooling for the bidsmap resolution engine",
		Long: `bidsmap resolves acquisition metadata snapshots against a declarative
rule catalog, producing standardized label sets. This tool lints
catalogs and dry-runs resolution against snapshot dumps; the actual
conversion pipeline consumes the engine as a library.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Version = version.Version
	rootCmd.AddCommand(checkCmd)
}

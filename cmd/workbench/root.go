package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rflorenc/scm-migration-workbench/internal/config"
	"github.com/rflorenc/scm-migration-workbench/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbosity  int
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "workbench",
		Short:        "Validate security-policy migrations between management-plane tenants",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v, -vv, -vvv)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "workbench %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

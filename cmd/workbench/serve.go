package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rflorenc/scm-migration-workbench/internal/api"
	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen, strategy string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			// Flags take precedence over the config file.
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("default-strategy") {
				if !models.Strategy(strategy).Valid() {
					return fmt.Errorf("--default-strategy %q must be one of skip, overwrite, rename", strategy)
				}
				cfg.DefaultStrategy = strategy
			}

			logger := logging.GetLogger("serve")
			server := api.NewServer(cfg)
			for _, t := range server.Tenants.List() {
				logger.Info().Str("tenant", t.Name).Str("tsg_id", t.TSGID).Str("role", t.Role).Msg("Loaded tenant")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migration workbench %s starting on %s\n", version, cfg.Listen)
			return http.ListenAndServe(cfg.Listen, api.NewRouter(server))
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "listen address")
	cmd.Flags().StringVar(&strategy, "default-strategy", string(models.StrategySkip), "strategy for items without an override")
	return cmd
}

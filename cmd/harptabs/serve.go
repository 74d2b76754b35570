package main

import (
	"context"
	"fmt"

	"github.com/0xlemi/harptabs/internal/api"
	"github.com/0xlemi/harptabs/internal/samples"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				if _, err := samples.SeedIfEmpty(ctx, e.store, e.log); err != nil {
					return err
				}
				if !cmd.Flags().Changed("port") {
					port = e.cfg.Server.Port
				}
				if e.cfg.LogLevel != "debug" {
					gin.SetMode(gin.ReleaseMode)
				}

				srv := api.NewServer(e.store, e.settings, e.log)
				fmt.Fprintf(cmd.OutOrStdout(), "Starting server on http://localhost:%d\n", port)
				return srv.Run(ctx, fmt.Sprintf(":%d", port))
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Server port (default from config)")
	return cmd
}

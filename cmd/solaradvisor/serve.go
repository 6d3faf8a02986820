package main

import (
	"context"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hfarrukh/solaradvisor/internal/api"
	"github.com/hfarrukh/solaradvisor/internal/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, web UI and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()

			srv, err := api.New(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			log.Printf("solaradvisor listening on %s", cfg.Addr)
			return http.ListenAndServe(cfg.Addr, srv.Handler())
		},
	}
}

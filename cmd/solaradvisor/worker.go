package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hfarrukh/solaradvisor/internal/config"
	"github.com/hfarrukh/solaradvisor/internal/cron"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduled tariff refresh worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := cron.Run(ctx, cfg)
			if err == context.Canceled {
				log.Printf("worker stopped")
				return nil
			}
			return err
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/hfarrukh/solaradvisor/internal/config"
	"github.com/hfarrukh/solaradvisor/internal/migrate"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			return migrate.Run(cfg.DBDriver, cfg.DBDSN, args[0])
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"viracoach/config"
	"viracoach/internal/deps"
	"viracoach/internal/server"
	"viracoach/internal/storage"
	"viracoach/log"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CheckConfig(); err != nil {
				return err
			}
			storage.InitDB()
			if count, err := storage.MarkStaleTasks(); err != nil {
				log.GetLogger().Warn("failed to mark stale tasks", zap.Error(err))
			} else if count > 0 {
				log.GetLogger().Info("marked stale tasks as failed", zap.Int64("count", count))
			}
			if err := deps.CheckDependency(); err != nil {
				return err
			}
			return server.StartBackend()
		},
	}
}

package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viracoach/config"
	"viracoach/internal/queue"
	"viracoach/internal/router"
	"viracoach/log"
)

// StartBackend brings up the HTTP API and, when Redis is configured, the
// Asynq worker alongside it. Blocks until the listener fails.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.SetupRouter(engine)

	if redisAddr := strings.TrimSpace(config.Conf.Queue.RedisAddr); redisAddr != "" {
		q := queue.NewQueue(queue.Config{
			RedisAddr:     redisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		go func() {
			if err := queue.StartWorker(q); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("server listening", zap.String("addr", addr))
	return engine.Run(addr)
}

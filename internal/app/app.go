package app

import (
	"go-hrflow/internal/config"
	"go-hrflow/internal/duration"
	"go-hrflow/internal/middleware"
	"go-hrflow/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Postgres, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	table, err := duration.LoadProbationTable(cfg.ProbationConfigPath)
	if err != nil {
		return err
	}

	router.Use(
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(rate.Limit(20), 40),
	)

	return registerModules(router, sqlDB, gormDB, redisClient, cfg, table)
}

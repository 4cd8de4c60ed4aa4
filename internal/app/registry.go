package app

import (
	"database/sql"

	"go-hrflow/internal/approval"
	"go-hrflow/internal/config"
	"go-hrflow/internal/directory"
	"go-hrflow/internal/duration"
	"go-hrflow/internal/messaging/kafka"
	"go-hrflow/internal/probation"
	"go-hrflow/internal/rbac"
	"go-hrflow/internal/rbac/infra"
	"go-hrflow/internal/shared/counter"
	"go-hrflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg config.Config,
	table duration.ProbationTable,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	directoryRepo := directory.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Workflow ---
	directoryService := directory.NewService(directoryRepo, rbacService, rdb)
	approvalStore := approval.NewStore(db, approvalRepo, outboxRepo)
	engine := workflow.NewEngine(approvalStore, directoryService)

	// --- Services ---
	approvalService := approval.NewService(db, approvalRepo, engine, directoryService, counterRepo, cfg.ScheduleMaxEdits)
	probationService := probation.NewService(directoryService, table)

	// --- Handlers ---
	approvalHandler := approval.NewHandler(approvalService)
	probationHandler := probation.NewHandler(probationService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		approval.RegisterRoutes(api, approvalHandler, rbacService, rdb)
		probation.RegisterRoutes(api, probationHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}

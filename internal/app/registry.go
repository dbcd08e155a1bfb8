package app

import (
	"database/sql"

	"go-leave/internal/balance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/rbac"
	"go-leave/internal/request"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	requestRepo := request.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	balanceService := balance.NewService(db, balanceRepo, rdb)
	requestService := request.NewServiceWithOutbox(db, requestRepo, balanceRepo, outboxRepo, balanceService)

	// --- Handlers ---
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	balanceHandler := balance.NewHandler(balanceService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
	}

	return nil
}

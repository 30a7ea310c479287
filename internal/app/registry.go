package app

import (
	"leavedesk/internal/auth"
	"leavedesk/internal/balance"
	"leavedesk/internal/leave"
	"leavedesk/internal/rbac"
	"leavedesk/internal/report"
	"leavedesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	ledger := balance.NewLedger(gormDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(userRepo)
	userService := user.NewService(gormDB, userRepo, ledger)
	leaveService := leave.NewService(gormDB, leaveRepo, ledger, rdb)
	reportService := report.NewService(userRepo, leaveRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	leaveHandler := leave.NewHandler(leaveService, rdb)
	reportHandler := report.NewHandler(reportService)

	// --- Routes Registration ---
	api := router.Group("/")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		report.RegisterRoutes(api, reportHandler, rbacService)
	}

	return nil
}

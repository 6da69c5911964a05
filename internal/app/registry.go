package app

import (
	"database/sql"

	"go-payrun/internal/accrual"
	"go-payrun/internal/attendance"
	"go-payrun/internal/employee"
	"go-payrun/internal/messaging/kafka"
	"go-payrun/internal/params"
	"go-payrun/internal/payrun"

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
	paramsRepo := params.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	payrunRepo := payrun.NewRepository(gormDB)
	accrualRepo := accrual.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	accrualService := accrual.NewService(db, accrualRepo, payrunRepo)
	payrunService := payrun.NewServiceWithSideEffects(
		db,
		payrunRepo,
		paramsRepo,
		employeeRepo,
		attendanceRepo,
		accrual.NewGenerator(accrualService),
		outboxRepo,
	)

	// --- Handlers ---
	payrunHandler := payrun.NewHandlerWithRedis(payrunService, rdb)
	accrualHandler := accrual.NewHandler(accrualService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		payrun.RegisterRoutes(api, payrunHandler, rdb)
		accrual.RegisterRoutes(api, accrualHandler)
	}

	return nil
}

package accrual

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	runs := r.Group("/payroll-runs")
	{
		runs.POST("/:id/accruals", handler.GenerateForRun)
	}

	accruals := r.Group("/accruals")
	{
		accruals.GET("", handler.GetAll)
		accruals.POST("/:id/pay", handler.Pay)
	}
}

package payrun

import (
	"go-payrun/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// A bulk run is heavy; one trigger per second with a small burst is
// plenty for any legitimate scheduler.
const (
	runTriggerRate  = rate.Limit(1)
	runTriggerBurst = 3
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/payroll-runs")
	{
		runs.GET("", handler.GetAll)
		runs.GET("/:id", handler.GetById)
		runs.GET("/:id/items", handler.GetItems)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RateLimitByCompany(runTriggerRate, runTriggerBurst),
				handler.Run,
			)
		} else {
			runs.POST("", middleware.RateLimitByCompany(runTriggerRate, runTriggerBurst), handler.Run)
		}
	}
}

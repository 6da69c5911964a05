package middleware

import (
	"go-payrun/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger carrying the request id
// and tenant metadata. Company and actor identity come from trusted
// headers set by the gateway; this core does not do authentication.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetHeader("X-Company-ID")
		actorID := c.GetHeader("X-Actor-ID")

		c.Set("company_id", companyID)
		c.Set("actor_id", actorID)

		rid := c.GetString("request_id")
		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("company_id", companyID),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithActorID(ctx, actorID)
		ctx = contextutil.WithLogger(ctx, reqLogger)

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

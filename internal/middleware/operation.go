package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/service"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

// Operation labels the business outcome of one transactional operation for
// the per-operation metrics counter. The outcome is set by the response
// helpers; requests that never reach them count as errors.
func Operation(metricsSvc *service.MetricsService, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		outcome := "error"
		if v, ok := c.Get(response.ContextOutcomeKey); ok {
			if s, ok := v.(string); ok {
				outcome = s
			}
		}
		metricsSvc.ObserveOperation(operation, outcome, time.Since(start))
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/audit"
	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

// Audit records one activity entry after the request completes. Entries go
// through the recorder's queue, so a slow or failing sink never delays the
// response.
func Audit(recorder *audit.Recorder, action, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			return
		}

		var actor *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			actor = &user.UserID
		}

		// Business rejections ride HTTP 200; the response helpers label them
		// through the context so the record reflects the real outcome.
		success := status < 400
		if v, ok := c.Get(response.ContextOutcomeKey); ok {
			if outcome, ok := v.(string); ok {
				success = outcome == "ok"
			}
		}

		recorder.Record(audit.Entry{
			Actor:       actor,
			Action:      action,
			Module:      module,
			Description: c.Request.Method + " " + c.FullPath(),
			Success:     success,
			Metadata: map[string]interface{}{
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
				"ip":         c.ClientIP(),
			},
		})
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flyttman/pkg/utils"
)

func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set("trace_id", traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

// ErrorExposureMiddleware controls whether utils.HandleServiceError echoes
// internal error texts. Production deployments pass false.
func ErrorExposureMiddleware(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ExposeErrorsKey, expose)
		c.Next()
	}
}

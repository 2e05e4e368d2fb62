package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/logging"
)

// CORS allows the listed origins; "*" or an empty list allows any.
func CORS(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[strings.ToLower(origin)]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request through the application logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		fields := logging.Fields{
			constants.LogFieldMethod:  c.Request.Method,
			constants.LogFieldPath:    c.Request.URL.Path,
			constants.LogFieldStatus:  status,
			constants.LogFieldLatency: time.Since(start).String(),
			constants.LogFieldAddr:    c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logging.Warn("request failed", fields)
		default:
			logging.Debug("request", fields)
		}
	}
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/http/problem"
)

// Recovery turns a panicking handler into a problem+json 500 instead of a
// crashed process, logging the panic value before responding.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(c.Request.Context(), "panic recovered",
					"panic", rec, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, problem.Document{
					Type:   domainerr.TypeInternalServerError,
					Title:  "internal",
					Status: http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}

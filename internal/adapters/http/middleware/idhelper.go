package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/go-mdc"
)

// idMiddlewareConfig configures the ID middleware behavior.
type idMiddlewareConfig struct {
	headerName string
	contextKey string
	mdcKey     string
	contextSetter func(ctx context.Context, id string) context.Context
}

// createIDMiddleware creates middleware that extracts or generates an ID.
// This is a shared implementation for request ID and correlation ID
// middleware. The ID is stored in the gin context, echoed on the response
// header, placed in the request context for downstream retrieval, and
// seeded into the request's diagnostic context so every log record emitted
// for this request carries it.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)

		// Generate new UUID if not provided
		if id == "" {
			id = uuid.New().String()
		}

		// Store in gin context for retrieval by handlers
		c.Set(cfg.contextKey, id)

		// Add to response headers
		c.Header(cfg.headerName, id)

		ctx := c.Request.Context()
		if cfg.contextSetter != nil {
			ctx = cfg.contextSetter(ctx, id)
			c.Request = c.Request.WithContext(ctx)
		}

		// Seed the diagnostic context (no-op if DiagnosticContext did not run)
		mdc.Insert(ctx, cfg.mdcKey, id)

		c.Next()
	}
}

// getIDFromContext extracts an ID from the gin context by key.
func getIDFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-mdc"
)

// DiagnosticContext returns middleware that attaches a fresh diagnostic
// context store to each request. The store is owned by the request's
// handler chain: later middleware seeds it (request ID, correlation ID,
// trace ID), handlers may add their own pairs, and the logging handler
// reads it whenever a record is emitted with the request context.
//
// This middleware must run before any middleware that writes to the
// store; a request context without a store silently ignores writes.
func DiagnosticContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := mdc.NewContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

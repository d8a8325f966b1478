package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/scod/observability"
)

// Tracing opens an http.request span around each request so operation
// spans nest under it. Install it after RequestID.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanHTTP, trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, c.Request.Method),
			attribute.String(observability.AttrHTTPRoute, c.FullPath()),
			attribute.String(observability.AttrRequestID, c.GetString(RequestIDKey)),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		observability.SetSpanAttribute(ctx, observability.AttrStatus, c.Writer.Status())
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last
		}
		observability.EndSpan(span, err)
	}
}

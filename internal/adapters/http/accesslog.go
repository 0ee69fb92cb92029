package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs HTTP requests with structured slog output.
// Logs: method, path, status, latency, bytes sent, request ID, sdpath and error (if any).
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Call next handler
		err := c.Next()

		// Response details. The request ID comes from the context set by
		// RequestIDLogMiddleware, not the header, so generated IDs are logged too.
		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", RequestIDFromCtx(c.UserContext())),
		}

		// Tie openzgy requests to the survey they asked for
		if sdpath := c.Query("sdpath"); sdpath != "" {
			attrs = append(attrs, slog.String("sdpath", sdpath))
		}

		// Determine log level based on status code; a handler error is always an error
		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		// Log the request
		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}

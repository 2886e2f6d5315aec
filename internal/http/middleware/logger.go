package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"actas/internal/logging"
)

// Logger logs one JSON line per request with request_id, session_id,
// method, path, status and latency (milliseconds).
func Logger(l zerolog.Logger) fiber.Handler {
	l = logging.Component(l, "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		sid, _ := c.Locals(SessionLocalKey).(string)

		l.Info().
			Str("event", "http_request").
			Str("request_id", rid).
			Str("session_id", sid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Send()

		return err
	}
}

// LoggerWithWriter is Logger over a fresh logger writing to w in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}

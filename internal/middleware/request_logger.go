package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "requestid"
)

// RequestLogger logs one structured line per request. An incoming
// X-Request-ID is reused, otherwise a new one is generated and echoed back.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(LocalRequestID, requestID)
		c.Set(HeaderRequestID, requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()

		entry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.IP(),
			"user_agent":  string(c.Request().Header.UserAgent()),
		})

		switch {
		case err != nil:
			entry.WithError(err).Error("request failed")
		case statusCode >= 500:
			entry.Error("request completed with server error")
		case statusCode >= 400:
			entry.Warn("request completed with client error")
		default:
			entry.Info("request completed")
		}

		return err
	}
}

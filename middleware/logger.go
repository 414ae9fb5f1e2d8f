package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger logs every request with zap and records its latency.
func ZapLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		query := string(c.Request().URI().QueryString())

		var errorMessage string
		if chainErr := c.Next(); chainErr != nil {
			errorMessage = chainErr.Error()
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()
		method := c.Method()

		fields := []zapcore.Field{
			zap.Int("status", statusCode),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.IP()),
			zap.Duration("latency", latency),
			zap.String("user-agent", c.Get(fiber.HeaderUserAgent)),
		}
		if errorMessage != "" {
			fields = append(fields, zap.String("error", errorMessage))
		}
		metrics.RequestDuration.WithLabelValues(method, strconv.Itoa(statusCode)).Observe(latency.Seconds())

		if statusCode >= http.StatusInternalServerError {
			logger.Error("Request handled", fields...)
		} else if statusCode >= http.StatusBadRequest {
			logger.Warn("Request handled", fields...)
		} else {
			logger.Info("Request handled", fields...)
		}
		return nil
	}
}

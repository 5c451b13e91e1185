package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"content_studio/internal/common"
	"content_studio/internal/metrics"
)

// RequestMetrics ghi nhận số request và thời gian xử lý theo route (không theo path thật để tránh bùng nổ label)
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = common.HTTPStatus(err)
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Method(), route, status, time.Since(start))
		return err
	}
}

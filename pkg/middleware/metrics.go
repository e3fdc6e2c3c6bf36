package middleware

import (
	"errors"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		// The route template keeps label cardinality bounded.
		route := c.Route().Path
		elapsed := time.Since(start)
		prometheus.ObserveRequest(c.Method(), route, status, elapsed)

		m.logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"route":      route,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
		}).Debug("request served")
		return err
	}
}

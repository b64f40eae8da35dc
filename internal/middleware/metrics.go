package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/metrics"
)

// Metrics records request count, latency and in-flight requests per route template.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.StatusOf(err)
		}
		// route path keeps label cardinality bounded
		route := c.Route().Path
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		m.RequestTotal.WithLabelValues(labels...).Inc()
		m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

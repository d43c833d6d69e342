package httpserver

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const readyTimeout = time.Second

func (s *HTTPServer) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ready pings the store.
func (s *HTTPServer) ready(c *fiber.Ctx) error {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		if err := s.deps.Store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "not_ready",
				"details": err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func metricsHandler(m *metrics.Metrics) fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}

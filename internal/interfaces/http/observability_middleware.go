package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog: método, ruta, status,
// latencia y usuario.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := statusOf(c, err)
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(err)
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}

// httpObserver lo implementa *metrics.Recorder.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// HTTPMetrics mide peticiones por patrón de ruta ("/api/Quotation/:id"),
// no por URL, para acotar la cardinalidad.
func HTTPMetrics(obs httpObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		obs.ObserveHTTP(c.Method(), route, statusOf(c, err), time.Since(start))
		return err
	}
}

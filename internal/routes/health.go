package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints. Only
// configured backends are checked.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{}
		healthy := true
		check := func(name string, ping func() error) {
			if err := ping(); err != nil {
				status[name] = err.Error()
				healthy = false
				return
			}
			status[name] = "ok"
		}
		if d.DB != nil {
			check("postgres", func() error { return d.DB.Ping(ctx) })
		}
		if d.SQLite != nil {
			check("sqlite", func() error { return d.SQLite.PingContext(ctx) })
		}
		if d.Cache != nil {
			check("redis", func() error { return d.Cache.Ping(ctx).Err() })
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

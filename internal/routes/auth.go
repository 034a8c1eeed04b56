package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Login responses carry a
// fresh token and are never cached for replay.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/login", h.Login)
}

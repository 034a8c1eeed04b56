package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/identity"
)

// RegisterIdentityRoutes wires the public registration endpoint.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, guards []fiber.Handler) {
	r.Post("/register", chain(guards, h.Register)...)
}

// RegisterProfileRoutes wires endpoints about the authenticated user. guards
// must include the bearer token check.
func RegisterProfileRoutes(r fiber.Router, h *identity.Handler, guards []fiber.Handler) {
	r.Get("/me", chain(guards, h.Me)...)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/ledger"
)

// RegisterLedgerRoutes wires the entry endpoints. guards must include the
// bearer token check.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler, guards []fiber.Handler) {
	r.Post("/add-entry", chain(guards, h.AddEntry)...)
	r.Get("/history", chain(guards, h.History)...)
	r.Get("/summary", chain(guards, h.Summary)...)
}

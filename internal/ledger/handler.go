package ledger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/middleware"
)

// Handler exposes the entry endpoints. The owner always comes from the
// verified token, never from the request body.
type Handler struct {
	svc *Service
}

// NewHandler builds the entry handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// amountField accepts a JSON number or a numeric string and keeps its text.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
	default:
		// Non-numeric literals fail amount validation downstream.
		*a = amountField(b)
	}
	return nil
}

type addEntryRequest struct {
	Type   string      `json:"type"`
	Amount amountField `json:"amount"`
	Note   string      `json:"note"`
	Date   string      `json:"date"`
}

type entryResponse struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount"`
	Note      string      `json:"note"`
	Date      string      `json:"date"`
	CreatedAt time.Time   `json:"created_at"`
}

type summaryResponse struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
	Count   int         `json:"count"`
}

func toResponse(e Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		UserID:    e.OwnerID,
		Type:      string(e.Kind),
		Amount:    json.Number(e.Amount.String()),
		Note:      e.Note,
		Date:      e.Date.Format(DateLayout),
		CreatedAt: e.CreatedAt,
	}
}

// AddEntry records an entry for the caller.
func (h *Handler) AddEntry(c *fiber.Ctx) error {
	uid, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	var req addEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	entry, err := h.svc.Add(c.UserContext(), uid, AddInput{
		Kind:   req.Type,
		Amount: string(req.Amount),
		Note:   req.Note,
		Date:   req.Date,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Entry added successfully",
		"entry":   toResponse(entry),
	})
}

// History lists the caller's entries, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.History(c.UserContext(), uid)
	if err != nil {
		return err
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	return c.JSON(out)
}

// Summary returns the caller's running totals.
func (h *Handler) Summary(c *fiber.Ctx) error {
	uid, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	sum, err := h.svc.Summary(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(summaryResponse{
		Income:  json.Number(sum.Income.String()),
		Expense: json.Number(sum.Expense.String()),
		Balance: json.Number(sum.Balance.String()),
		Count:   sum.Count,
	})
}

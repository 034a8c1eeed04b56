package identity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/middleware"
)

// Handler exposes registration and profile endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the identity handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates an account. The client logs in separately.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	user, err := h.svc.Register(c.UserContext(), RegisterInput(req))
	if err != nil {
		return err
	}
	h.logger.InfoContext(c.UserContext(), "identity.register completed",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.Int("status", http.StatusCreated),
	)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "User registered successfully"})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(profileResponse{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/tally-app/tally/internal/apperrors"
)

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperrors.CodeOf(err).HTTPStatus()
}

// ErrorHandler renders every handler error as {"error": message}. Internal
// errors are logged with their cause and shown only as a generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		var ae *apperrors.Error
		if !errors.As(err, &ae) {
			ae = apperrors.Internal("unhandled error", err)
		}
		if ae.Code == apperrors.CodeInternal {
			logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", RequestIDFrom(c)),
				slog.Any("error", err),
			)
		}
		return c.Status(ae.Code.HTTPStatus()).JSON(fiber.Map{"error": ae.PublicMessage()})
	}
}

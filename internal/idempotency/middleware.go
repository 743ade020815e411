package idempotency

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// HeaderKey is the client-supplied idempotency token header.
const HeaderKey = "Idempotency-Key"

// Middleware gates a creation POST. The header is mandatory; a known
// (key, user) pair replays the stored status and body exactly, without
// re-executing the handler, even when the stored response was an error.
// On a miss the handler runs and its response is persisted before being
// returned. 5xx responses are not persisted so transient failures stay
// retryable. Must run after the auth middleware.
func Middleware(store Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderKey)
		if key == "" {
			return util.NewFieldError("FIELD_REQUIRED", "idempotency-key",
				"Idempotency-Key header is required for POST requests")
		}

		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		userID := principal.User.ID

		record, err := store.Lookup(c.UserContext(), key, userID)
		if err != nil {
			return util.MapError(err)
		}
		if record != nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(record.StatusCode).Send(record.Body)
		}

		if err := c.Next(); err != nil {
			domainErr := util.ToDomainError(err)
			if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
				return err
			}
			// Render the uniform error body here so it can be captured
			// and replayed like any other outcome.
			c.Status(domainErr.HTTPStatus)
			if jsonErr := c.JSON(domainErr.Body()); jsonErr != nil {
				return jsonErr
			}
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusInternalServerError {
			body := make([]byte, len(c.Response().Body()))
			copy(body, c.Response().Body())
			if saveErr := store.Save(c.UserContext(), key, userID, Record{StatusCode: status, Body: body}); saveErr != nil {
				logger.Warn("failed to persist idempotency record",
					zap.String("key", key), zap.Error(saveErr))
			}
		}
		return nil
	}
}

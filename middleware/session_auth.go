package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// SessionAuthRequired ensures that the editor signed in through the browser.
// Unauthenticated visitors are sent to loginPath.
func SessionAuthRequired(store *session.Store, loginPath string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			log.Error("Session store is not initialized")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		sess, err := store.Get(c)
		if err != nil {
			log.Error("Error retrieving session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		userID, ok := sess.Get("user_id").(uint)
		if !ok || userID == 0 {
			return c.Redirect(loginPath)
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

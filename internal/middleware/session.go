package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/agrolink/internal/config"
	"github.com/example/agrolink/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "agrolink_session"

const sessionContextKey = "currentSession"

// SessionMiddleware restores the farmer session from the signed cookie and
// rejects requests without a valid one.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
		}

		session, err := utils.ParseSessionToken(cfg.JWTSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
		}

		c.Locals(sessionContextKey, session)
		return c.Next()
	}
}

// CurrentSession extracts the restored session from the request context.
func CurrentSession(c *fiber.Ctx) (utils.SessionData, bool) {
	value := c.Locals(sessionContextKey)
	if value == nil {
		return utils.SessionData{}, false
	}

	if session, ok := value.(utils.SessionData); ok {
		return session, true
	}

	return utils.SessionData{}, false
}

// SetSessionCookie signs the session payload and attaches it to the response.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, session utils.SessionData) error {
	token, err := utils.GenerateSessionToken(cfg.JWTSecret, session, cfg.SessionTTL)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

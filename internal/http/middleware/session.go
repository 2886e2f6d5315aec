package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// SessionHeader lets API clients pick their session without cookies.
	SessionHeader = "X-Session-ID"
	// SessionLocalKey is the Fiber locals key holding the session ID.
	SessionLocalKey = "session_id"
	// DefaultSessionCookie is the cookie carrying the session ID.
	DefaultSessionCookie = "actas_session"
)

// Session resolves the caller's record table. The header wins over the
// cookie; when neither is present a new ID is issued as a cookie.
func Session(cookie string, ttl time.Duration) fiber.Handler {
	if cookie == "" {
		cookie = DefaultSessionCookie
	}
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(cookie)
		}
		if id == "" {
			id = uuid.NewString()
			ck := &fiber.Cookie{
				Name:     cookie,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			}
			if ttl > 0 {
				ck.MaxAge = int(ttl.Seconds())
			}
			c.Cookie(ck)
		}
		c.Locals(SessionLocalKey, id)
		return c.Next()
	}
}

// SessionID returns the session ID stored by Session, or "".
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(SessionLocalKey).(string)
	return id
}

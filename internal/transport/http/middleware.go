package http

import (
	"net/http"

	"cncraft/internal/cartstore"
	"cncraft/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the opaque session id the server-side cart
	// replica is keyed on.
	SessionCookieName = "cart_session"

	sessionIDKey = "session_id"
)

// SessionMiddleware mints an opaque session id for first-time visitors and
// exposes it to handlers. The id itself carries no data; the cart lives
// server-side.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(SessionCookieName, sid, int(cartstore.CookieMaxAge.Seconds()), "/", "", false, true)
		}
		c.Set(sessionIDKey, sid)
		c.Next()
	}
}

// IdentityMiddleware trusts the authenticated user id resolved by the
// upstream gateway (X-User-ID header). Authentication itself happens
// there; this service only needs the identity for profile attachment.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), userID))
			}
		}
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// cartCookie reads the persistent cart cookie, returning "" when absent.
func cartCookie(c *gin.Context) string {
	val, err := c.Cookie(cartstore.CookieName)
	if err != nil {
		return ""
	}
	return val
}

func setCartCookie(c *gin.Context, value string) {
	c.SetCookie(cartstore.CookieName, value, int(cartstore.CookieMaxAge.Seconds()), "/", "", false, true)
}

// expireCartCookie clears the persistent cookie: empty-object value,
// immediate expiry.
func expireCartCookie(c *gin.Context) {
	c.SetCookie(cartstore.CookieName, "{}", -1, "/", "", false, true)
}

func requireAuth(c *gin.Context) bool {
	if _, ok := service.UserIDFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return false
	}
	return true
}

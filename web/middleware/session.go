package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookieName = "insight_agent_session"
const CookieMaxAge = 30 * 24 * 60 * 60 // 30 days

// Session assigns each client a stable session UUID via cookie. The
// pipeline itself is stateless; the ID only scopes rate limiting and
// lets callers correlate uploads with chat messages.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionID uuid.UUID

		cookie, err := c.Cookie(SessionCookieName)
		if err == http.ErrNoCookie {
			sessionID = uuid.New()
			c.SetCookie(SessionCookieName, sessionID.String(), CookieMaxAge, "/", "", false, true)
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse session cookie"})
			return
		} else {
			sessionID, err = uuid.Parse(cookie)
			if err != nil {
				// Stale or foreign cookie; mint a fresh session.
				sessionID = uuid.New()
				c.SetCookie(SessionCookieName, sessionID.String(), CookieMaxAge, "/", "", false, true)
			}
		}

		c.Set("sessionID", sessionID)
		c.Next()
	}
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const (
	contextUserKey    = "user"
	contextSessionKey = "session"
)

func SetIdentity(c *gin.Context, user *models.User, session *models.Session) {
	c.Set(contextUserKey, user)
	c.Set(contextSessionKey, session)
}

// CurrentUser returns the user attached by the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, exists := c.Get(contextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}

const SessionCookieName = "session_id"

// TokenFromRequest reads the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token, err := c.Cookie(SessionCookieName); err == nil {
		return token
	}
	return ""
}

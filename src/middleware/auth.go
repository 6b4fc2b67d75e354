package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/auth"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const minTokenLength = 10

// Authenticator resolves a bearer token to its user and session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
	logger        *zap.Logger
}

func NewAuthMiddleware(authenticator Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - No token provided"})
			return
		}

		if len(token) < minTokenLength {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid token format"})
			return
		}

		user, session, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				m.logger.Error("authentication failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid or expired token"})
			return
		}

		auth.SetIdentity(c, user, session)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never rejects.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c)
		if len(token) < minTokenLength {
			c.Next()
			return
		}

		user, session, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err == nil {
			auth.SetIdentity(c, user, session)
		}

		c.Next()
	}
}

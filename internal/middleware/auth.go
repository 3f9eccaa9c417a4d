package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yukikurage/survey-api/internal/constants"
	apierrors "github.com/yukikurage/survey-api/internal/errors"
	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/services"
)

// TokenResolver turns an access token into the user it names.
type TokenResolver interface {
	ResolveAccessToken(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth requires an active user identified by a bearer token or, failing
// that, by the token stored in the session at login.
func RequireAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			apierrors.NotAuthenticated(c, "Not authenticated")
			return
		}

		user, err := resolver.ResolveAccessToken(c.Request.Context(), token)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		if !user.IsActive {
			apierrors.BadRequestWithCode(c, apierrors.ErrCodeInactiveUser, "Inactive user")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the user when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := resolver.ResolveAccessToken(c.Request.Context(), token)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		if user.IsActive {
			setUser(c, user)
		}
		c.Next()
	}
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.NotAuthenticated(c, "Could not validate credentials")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		slog.ErrorContext(c.Request.Context(), "failed to resolve access token", "error", err)
		apierrors.InternalError(c, "")
	}
}

// accessToken reads the Authorization header first and the session second.
func accessToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, constants.TokenTypeBearer) {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(constants.SessionKeyAccessToken).(string); ok {
		return token
	}
	return ""
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(constants.ContextKeyUser, user)
	c.Set(constants.ContextKeyUserID, user.ID)
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetUserID retrieves the current user ID from context. Anonymous requests yield uuid.Nil.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

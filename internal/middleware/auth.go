package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/models"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "jwt"

const identityKey = "identity"

type identityCtxKey struct{}

// TokenVerifier resolves a session token to the id of its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLoader loads an identity by id without its password hash.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProtectRoute authenticates the request from a Bearer token or the session
// cookie and attaches the caller's identity before continuing.
func ProtectRoute(tokens TokenVerifier, users UserLoader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abortWithMessage(c, http.StatusUnauthorized, "Token expired")
				return
			}
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				abortWithMessage(c, http.StatusNotFound, "User not found")
				return
			}
			logger.ErrorContext(c.Request.Context(), "failed to load identity", "user_id", userID, "err", err)
			abortWithMessage(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		SetIdentity(c, user)
		c.Next()
	}
}

// AuthorizeRoles allows the request through only when the attached identity
// holds one of roles.
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := Identity(c)
		if !ok {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized")
			return
		}
		if !slices.Contains(roles, user.Role) {
			abortWithMessage(c, http.StatusForbidden,
				fmt.Sprintf("Role (%s) is not authorized to access this resource", user.Role))
			return
		}
		c.Next()
	}
}

// SetIdentity attaches user to the gin context and to the request context.
func SetIdentity(c *gin.Context, user *models.User) {
	c.Set(identityKey, user)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), user))
}

// Identity returns the identity attached by ProtectRoute.
func Identity(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// WithIdentity returns a copy of ctx carrying user.
func WithIdentity(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, user)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(identityCtxKey{}).(*models.User)
	return user, ok && user != nil
}

// extractToken prefers a Bearer Authorization header. Once the header names
// the Bearer scheme the cookie is not consulted, even if the token is empty.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, _ := strings.Cut(header, " ")
		if strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	return ""
}

package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/jwt"
	"propdesk.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// IdentityKey is the context key for the verified token identity
	IdentityKey = "identity"
	// CurrentUserKey is the context key for the resolved user record
	CurrentUserKey = "currentUser"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// UserLookup resolves a profile from the identity email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token identity in the context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.Error(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Error(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		id, err := identityFromToken(validator, strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Warn(c.Request.Context(), "Bearer token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Error(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			response.Error(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		c.Set(IdentityKey, id)
		c.Next()
	}
}

// OptionalAuth stores the identity when a valid bearer token is present and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	required := AuthMiddleware(validator)
	return func(c *gin.Context) {
		if c.GetHeader(AuthorizationHeader) == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// ResolveUser loads the profile for the authenticated identity. Requests from
// identities that never completed signup get 404 so clients call POST /me.
func ResolveUser(lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			response.Error(c, domainerrors.Unauthorized("User not authenticated"))
			return
		}

		user, err := lookup.GetByEmail(c.Request.Context(), id.Email)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				response.Error(c, domainerrors.NotFound("Profile not found"))
				return
			}
			response.Error(c, err)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(), zap.String("user_id", user.ID.String())))
		c.Next()
	}
}

// RequireAdmin requires the resolved user to carry the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, domainerrors.Unauthorized("User not authenticated"))
			return
		}
		if !user.IsAdmin {
			response.Error(c, domainerrors.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetIdentity gets the token identity from context
func GetIdentity(c *gin.Context) (usecases.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return usecases.Identity{}, false
	}
	id, ok := v.(usecases.Identity)
	return id, ok
}

// CurrentUser gets the resolved user from context
func CurrentUser(c *gin.Context) (*entities.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

func identityFromToken(validator TokenValidator, token string) (usecases.Identity, error) {
	claims, err := validator.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return usecases.Identity{}, err
	}
	return usecases.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

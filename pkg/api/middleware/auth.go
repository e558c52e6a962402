package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
)

const (
	identityKey = "identity"
	tokenKey    = "token"

	verifyTimeout = 5 * time.Second
)

// BearerToken extracts the token from an "Authorization: Bearer {token}" header.
// It returns "" when the header is missing or malformed.
func BearerToken(c echo.Context) string {
	parts := strings.Fields(c.Request().Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Identity returns the identity stored by the auth middleware, or nil
func Identity(c echo.Context) *identity.Identity {
	id, _ := c.Get(identityKey).(*identity.Identity)
	return id
}

// Token returns the access token stored by the auth middleware
func Token(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}

func verify(c echo.Context, verifier identity.Verifier, token string) (*identity.Identity, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), verifyTimeout)
	defer cancel()
	return verifier.Verify(ctx, token)
}

// RequireIdentity rejects requests without a valid bearer token
func RequireIdentity(verifier identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "auth_required",
					Message: "Please sign in to continue",
				})
			}

			id, err := verify(c, verifier, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token",
					Message: "Your session has expired. Please sign in again.",
				})
			}

			c.Set(tokenKey, token)
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// OptionalIdentity resolves the caller when a valid token is present and
// otherwise lets the request through anonymously. Handlers decide what an
// anonymous caller may do.
func OptionalIdentity(verifier identity.Verifier, log logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return next(c)
			}

			id, err := verify(c, verifier, token)
			if err != nil {
				log.Debug("Ignoring unverifiable token", "path", c.Path(), "error", err)
				return next(c)
			}

			c.Set(tokenKey, token)
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

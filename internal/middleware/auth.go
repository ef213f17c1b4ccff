// Package middleware holds the echo middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"casedesk/internal/auth"
	apperrors "casedesk/internal/errors"
	"casedesk/internal/policy"
)

// AuthTokenHeader is the legacy header some clients send the token in.
const AuthTokenHeader = "x-auth-token"

const (
	claimsKey   = "user"
	identityKey = "identity"
)

// HTTPError converts a domain error into an echo error with a JSON body.
func HTTPError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// JWT verifies the access token found in Authorization: Bearer or x-auth-token
// and stores its claims on the context.
func JWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,header:" + AuthTokenHeader,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return HTTPError(apperrors.ErrUnauthenticated)
		},
	})
}

// Identity turns verified claims into an auth.Identity, rejecting revoked tokens.
func Identity(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsKey).(*auth.Claims)
			if !ok {
				return HTTPError(apperrors.ErrUnauthenticated)
			}
			if claims.ID != "" && store.IsRevoked(c.Request().Context(), claims.ID) {
				return HTTPError(apperrors.ErrUnauthenticated)
			}
			WithIdentity(c, claims.Identity())
			return next(c)
		}
	}
}

// Require rejects callers whose role may not perform op.
func Require(op policy.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return HTTPError(apperrors.ErrUnauthenticated)
			}
			if err := policy.Authorize(op, id.Role); err != nil {
				return HTTPError(err)
			}
			return next(c)
		}
	}
}

// WithIdentity attaches id to the request context.
func WithIdentity(c echo.Context, id auth.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity set by Identity.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}

// TokenFromRequest extracts the raw access token, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get(AuthTokenHeader))
}

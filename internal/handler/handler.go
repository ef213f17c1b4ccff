package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"casedesk/internal/auth"
	apperrors "casedesk/internal/errors"
	"casedesk/internal/middleware"
)

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"msg"`
}

// respondError logs server-side failures and converts err to an HTTP error.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	if apperrors.IsServerError(err) {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	}
	return middleware.HTTPError(err)
}

func currentIdentity(c echo.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, apperrors.ErrUnauthenticated
	}
	return id, nil
}

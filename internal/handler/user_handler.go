package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "casedesk/internal/errors"
	"casedesk/internal/model"
	"casedesk/internal/service"
)

// UserHandler handles account creation.
type UserHandler struct {
	svc service.UserService
	log *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// CreateUserRequest represents a new AGENT or TECH account.
type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required"`
	Username string     `json:"username" validate:"required"`
	Password string     `json:"password" validate:"required"`
	Role     model.Role `json:"role" validate:"required"`
}

// CreateAdminRequest represents the first ADMIN account.
type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserResponse confirms a created account.
type CreateUserResponse struct {
	Message string      `json:"msg"`
	User    UserSummary `json:"user"`
}

// CreateUser godoc
// @Summary Create an agent or technician account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "Account data"
// @Success 201 {object} CreateUserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/create-user [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.log, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.log, apperrors.Validation("name, username, password and role are required"))
	}

	user, err := h.svc.CreateUser(c.Request().Context(), actor, service.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, CreateUserResponse{
		Message: fmt.Sprintf("%s created", user.Role),
		User:    UserSummary{ID: user.ID.String(), Name: user.Name, Role: user.Role},
	})
}

// CreateAdmin godoc
// @Summary Create the first admin account
// @Description Only succeeds while no admin account exists.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateAdminRequest true "Admin data"
// @Success 201 {object} CreateUserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/create-admin [post]
func (h *UserHandler) CreateAdmin(c echo.Context) error {
	var req CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.log, apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.log, apperrors.Validation("name, username and password are required"))
	}

	user, err := h.svc.BootstrapAdmin(c.Request().Context(), service.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, CreateUserResponse{
		Message: "Admin created",
		User:    UserSummary{ID: user.ID.String(), Name: user.Name, Role: user.Role},
	})
}

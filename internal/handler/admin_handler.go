package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "casedesk/internal/errors"
	"casedesk/internal/service"
)

// AdminHandler handles the admin case endpoints.
type AdminHandler struct {
	caseService service.CaseService
	log         *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(caseService service.CaseService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{caseService: caseService, log: log}
}

// AllCases godoc
// @Summary List every case with decrypted card numbers
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/all-cases [get]
func (h *AdminHandler) AllCases(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	views, err := h.caseService.ListCasesForAdmin(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, views)
}

// CaseLogs godoc
// @Summary List the audit trail of a case
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param caseId path string true "Case ID"
// @Success 200 {array} model.CaseLog
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/case-logs/{caseId} [get]
func (h *AdminHandler) CaseLogs(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		return respondError(c, h.log, apperrors.ErrCaseNotFound)
	}
	entries, err := h.caseService.ListCaseLogs(c.Request().Context(), actor, caseID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, entries)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"casedesk/internal/export"
	"casedesk/internal/service"
)

// ExportFilename is the attachment name of case exports.
const ExportFilename = "Cases.xlsx"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	exportService service.ExportService
	log           *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService service.ExportService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, log: log}
}

// ExportCases godoc
// @Summary Download the caller's cases as a spreadsheet
// @Description Columns depend on the caller's role. Agents only receive their own cases.
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/export-excel [get]
func (h *ExportHandler) ExportCases(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	data, err := h.exportService.ExportCases(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+ExportFilename+`"`)
	return c.Blob(http.StatusOK, export.ContentType, data)
}

package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "casedesk/internal/errors"
	"casedesk/internal/model"
	"casedesk/internal/service"
)

// CaseHandler handles the agent and technician case endpoints.
type CaseHandler struct {
	caseService service.CaseService
	log         *zap.Logger
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(caseService service.CaseService, log *zap.Logger) *CaseHandler {
	return &CaseHandler{caseService: caseService, log: log}
}

// CreateCaseRequest represents a new case submitted by an agent.
type CreateCaseRequest struct {
	CustomerName string          `json:"cxName"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	Address      string          `json:"address"`
	Device       string          `json:"device"`
	Model        string          `json:"model"`
	ISP          string          `json:"isp"`
	Services     string          `json:"services"`
	PaymentMode  string          `json:"paymentMode"`
	Issue        string          `json:"issue"`
	Remark       string          `json:"remark"`
	Reference    string          `json:"caseId"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"number"`
	CardNumber   string          `json:"cardNumber"`
}

// CreateCaseResponse confirms a stored case.
type CreateCaseResponse struct {
	Message string `json:"msg"`
	ID      string `json:"id"`
}

// UpdateResolutionRequest carries a technician's fix decision.
// IssueFixed must be a JSON boolean.
type UpdateResolutionRequest struct {
	IssueFixed *bool  `json:"issueFixed" validate:"required"`
	TechRemark string `json:"techRemark"`
}

// ResolutionData summarizes a case after a resolution update.
type ResolutionData struct {
	ID         string           `json:"id"`
	Status     model.CaseStatus `json:"status"`
	IssueFixed bool             `json:"issueFixed"`
}

// UpdateResolutionResponse represents the outcome of a resolution update.
type UpdateResolutionResponse struct {
	Message string         `json:"msg"`
	Data    ResolutionData `json:"data"`
}

var errIssueFixedNotBool = apperrors.Validation("issueFixed must be true or false")

// Create godoc
// @Summary Create a case
// @Tags cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCaseRequest true "Case data"
// @Success 201 {object} CreateCaseResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /case/create [post]
func (h *CaseHandler) Create(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateCaseRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.log, apperrors.Validation("invalid request body"))
	}

	created, err := h.caseService.CreateCase(c.Request().Context(), actor, service.CreateCaseInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Device:       req.Device,
		Model:        req.Model,
		ISP:          req.ISP,
		Services:     req.Services,
		PaymentMode:  req.PaymentMode,
		Issue:        req.Issue,
		Remark:       req.Remark,
		Reference:    req.Reference,
		Amount:       req.Amount,
		CardNumber:   req.CardNumber,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, CreateCaseResponse{Message: "Case created", ID: created.ID.String()})
}

// ListMine godoc
// @Summary List the cases created by the calling agent
// @Tags cases
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /case/mine [get]
func (h *CaseHandler) ListMine(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	views, err := h.caseService.ListCasesForAgent(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, views)
}

// ListForTech godoc
// @Summary List cases for technicians
// @Description Phone numbers of resolved cases are masked. Card numbers are never included.
// @Tags cases
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /case/tech [get]
func (h *CaseHandler) ListForTech(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	views, err := h.caseService.ListCasesForTech(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, views)
}

// UpdateResolution godoc
// @Summary Mark a case fixed or not fixed
// @Tags cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param request body UpdateResolutionRequest true "Fix decision"
// @Success 200 {object} UpdateResolutionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /case/tech/fix/{id} [put]
func (h *CaseHandler) UpdateResolution(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req UpdateResolutionRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.log, errIssueFixedNotBool)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.log, errIssueFixedNotBool)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.log, apperrors.ErrCaseNotFound)
	}

	updated, err := h.caseService.UpdateResolution(c.Request().Context(), actor, id, *req.IssueFixed, req.TechRemark)
	if err != nil {
		return respondError(c, h.log, err)
	}

	msg := "Issue NOT FIXED, marked pending"
	if updated.Resolved {
		msg = "Issue successfully FIXED"
	}
	return c.JSON(http.StatusOK, UpdateResolutionResponse{
		Message: msg,
		Data: ResolutionData{
			ID:         updated.ID.String(),
			Status:     updated.Status,
			IssueFixed: updated.Resolved,
		},
	})
}

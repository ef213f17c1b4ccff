package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"casedesk/internal/auth"
	apperrors "casedesk/internal/errors"
	"casedesk/internal/model"
	"casedesk/internal/policy"
	"casedesk/internal/repository"
)

// PhoneLength is the exact number of digits a customer phone must have.
const PhoneLength = 10

// CardCipher protects the card number at rest.
type CardCipher interface {
	Encrypt(plaintext string) string
	Decrypt(ciphertext string) (string, error)
}

// AuditRecorder appends case audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry model.CaseLog)
}

// CreateCaseInput carries the agent-submitted fields of a new case.
type CreateCaseInput struct {
	CustomerName string
	Phone        string
	Email        string
	Address      string
	Device       string
	Model        string
	ISP          string
	Services     string
	PaymentMode  string
	Issue        string
	Remark       string
	Reference    string
	Amount       decimal.Decimal
	CardNumber   string
}

// CaseService handles case operations for every role.
type CaseService interface {
	CreateCase(ctx context.Context, actor auth.Identity, in CreateCaseInput) (*model.Case, error)
	ListCasesForAgent(ctx context.Context, actor auth.Identity) ([]policy.View, error)
	ListCasesForTech(ctx context.Context, actor auth.Identity) ([]policy.View, error)
	ListCasesForAdmin(ctx context.Context, actor auth.Identity) ([]policy.View, error)
	UpdateResolution(ctx context.Context, actor auth.Identity, id uuid.UUID, fixed bool, remark string) (*model.Case, error)
	ListCaseLogs(ctx context.Context, actor auth.Identity, caseID uuid.UUID) ([]model.CaseLog, error)
}

type caseService struct {
	caseRepo repository.CaseRepository
	logRepo  repository.CaseLogRepository
	cipher   CardCipher
	audit    AuditRecorder
	log      *zap.Logger
	now      func() time.Time
}

// NewCaseService creates a new case service.
func NewCaseService(
	caseRepo repository.CaseRepository,
	logRepo repository.CaseLogRepository,
	cipher CardCipher,
	audit AuditRecorder,
	log *zap.Logger,
) CaseService {
	return &caseService{
		caseRepo: caseRepo,
		logRepo:  logRepo,
		cipher:   cipher,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// CreateCase validates and stores a new PENDING case. The card number, when
// present, is encrypted before it reaches the repository.
func (s *caseService) CreateCase(ctx context.Context, actor auth.Identity, in CreateCaseInput) (*model.Case, error) {
	if err := policy.Authorize(policy.OpCreateCase, actor.Role); err != nil {
		return nil, err
	}
	if err := validateCaseInput(&in); err != nil {
		return nil, err
	}

	c := &model.Case{
		CreatedByID:  actor.UserID,
		AgentName:    actor.Name,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Email:        in.Email,
		Address:      in.Address,
		Device:       in.Device,
		Model:        in.Model,
		ISP:          in.ISP,
		Services:     in.Services,
		PaymentMode:  in.PaymentMode,
		Issue:        in.Issue,
		Remark:       in.Remark,
		Reference:    in.Reference,
		Amount:       in.Amount,
		CardNumber:   s.cipher.Encrypt(in.CardNumber),
		Status:       model.CaseStatusPending,
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}

	s.audit.Record(ctx, model.CaseLog{
		CaseID: c.ID,
		Action: model.CaseActionCreated,
		ByRole: actor.Role,
		ByUser: actor.UserID,
	})
	s.log.Info("case created", zap.String("case_id", c.ID.String()), zap.String("agent_id", actor.UserID))
	return c, nil
}

func validateCaseInput(in *CreateCaseInput) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CardNumber = strings.TrimSpace(in.CardNumber)
	if in.CustomerName == "" || in.Phone == "" {
		return apperrors.Validation("customer name and phone are required")
	}
	if len(in.Phone) != PhoneLength || strings.Trim(in.Phone, "0123456789") != "" {
		return apperrors.Validation(fmt.Sprintf("phone must be exactly %d digits", PhoneLength))
	}
	if in.Amount.IsNegative() {
		return apperrors.Validation("amount must not be negative")
	}
	return nil
}

// ListCasesForAgent returns the cases the agent created.
func (s *caseService) ListCasesForAgent(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	if err := policy.Authorize(policy.OpListOwnCases, actor.Role); err != nil {
		return nil, err
	}
	return s.list(ctx, actor.Role, repository.CaseFilter{CreatedByID: actor.UserID})
}

// ListCasesForTech returns every case with the phone masked on resolved ones
// and no card number at all.
func (s *caseService) ListCasesForTech(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	if err := policy.Authorize(policy.OpListTechCases, actor.Role); err != nil {
		return nil, err
	}
	return s.list(ctx, actor.Role, repository.CaseFilter{})
}

// ListCasesForAdmin returns every case with the card number decrypted.
// A ciphertext that cannot be decrypted fails the whole listing.
func (s *caseService) ListCasesForAdmin(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	if err := policy.Authorize(policy.OpListAllCases, actor.Role); err != nil {
		return nil, err
	}
	return s.list(ctx, actor.Role, repository.CaseFilter{WithCardNumber: true})
}

func (s *caseService) list(ctx context.Context, role model.Role, filter repository.CaseFilter) ([]policy.View, error) {
	cases, err := s.caseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	views, err := policy.ProjectAll(role, cases, s.cipher)
	if err != nil {
		s.log.Error("project cases", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	return views, nil
}

// UpdateResolution applies a technician's fix decision to a case.
func (s *caseService) UpdateResolution(ctx context.Context, actor auth.Identity, id uuid.UUID, fixed bool, remark string) (*model.Case, error) {
	if err := policy.Authorize(policy.OpUpdateResolution, actor.Role); err != nil {
		return nil, err
	}

	c, err := s.caseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	c.ApplyResolution(fixed, remark, s.now())
	if err := s.caseRepo.UpdateResolution(ctx, c); err != nil {
		return nil, fmt.Errorf("update resolution: %w", err)
	}

	action := model.CaseActionReopened
	if fixed {
		action = model.CaseActionResolved
	}
	s.audit.Record(ctx, model.CaseLog{
		CaseID: c.ID,
		Action: action,
		ByRole: actor.Role,
		ByUser: actor.UserID,
	})
	s.log.Info("case resolution updated",
		zap.String("case_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.String("tech_id", actor.UserID),
	)
	return c, nil
}

// ListCaseLogs returns the audit trail of one case.
func (s *caseService) ListCaseLogs(ctx context.Context, actor auth.Identity, caseID uuid.UUID) ([]model.CaseLog, error) {
	if err := policy.Authorize(policy.OpListCaseLogs, actor.Role); err != nil {
		return nil, err
	}
	entries, err := s.logRepo.ListByCaseID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case logs: %w", err)
	}
	return entries, nil
}

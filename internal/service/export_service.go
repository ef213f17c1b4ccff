package service

import (
	"context"
	"fmt"

	"casedesk/internal/auth"
	"casedesk/internal/export"
	"casedesk/internal/model"
	"casedesk/internal/policy"
	"casedesk/internal/repository"
)

// ExportService produces role-scoped spreadsheets of cases.
type ExportService interface {
	ExportCases(ctx context.Context, actor auth.Identity) ([]byte, error)
}

type exportService struct {
	caseRepo repository.CaseRepository
	cipher   CardCipher
}

// NewExportService creates a new export service.
func NewExportService(caseRepo repository.CaseRepository, cipher CardCipher) ExportService {
	return &exportService{caseRepo: caseRepo, cipher: cipher}
}

// ExportCases renders the cases visible to actor. Agents only get their own cases.
func (s *exportService) ExportCases(ctx context.Context, actor auth.Identity) ([]byte, error) {
	if err := policy.Authorize(policy.OpExportCases, actor.Role); err != nil {
		return nil, err
	}

	filter := repository.CaseFilter{WithCardNumber: actor.Role == model.RoleAdmin}
	if actor.Role == model.RoleAgent {
		filter.CreatedByID = actor.UserID
	}
	cases, err := s.caseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	views, err := policy.ProjectAll(actor.Role, cases, s.cipher)
	if err != nil {
		return nil, err
	}
	return export.Workbook(actor.Role, views)
}

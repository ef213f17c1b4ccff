package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"casedesk/internal/model"
)

// CaseLogRepository defines audit entry persistence. Entries are never updated or deleted.
type CaseLogRepository interface {
	Create(ctx context.Context, entry *model.CaseLog) error
	CreateBatch(ctx context.Context, entries []model.CaseLog) error
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]model.CaseLog, error)
}

type caseLogRepository struct {
	db *gorm.DB
}

// NewCaseLogRepository creates a new case log repository.
func NewCaseLogRepository(db *gorm.DB) CaseLogRepository {
	return &caseLogRepository{db: db}
}

// Create appends one entry.
func (r *caseLogRepository) Create(ctx context.Context, entry *model.CaseLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch appends entries in batches of 100.
func (r *caseLogRepository) CreateBatch(ctx context.Context, entries []model.CaseLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// ListByCaseID returns the entries of one case, oldest first.
func (r *caseLogRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]model.CaseLog, error) {
	var entries []model.CaseLog
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

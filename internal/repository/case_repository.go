package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"casedesk/internal/model"
)

// cardNumberColumn is excluded from reads unless explicitly requested.
const cardNumberColumn = "card_number"

// CaseFilter narrows a case listing.
type CaseFilter struct {
	CreatedByID    string
	WithCardNumber bool
}

// CaseRepository defines case persistence operations.
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]model.Case, error)
	UpdateResolution(ctx context.Context, c *model.Case) error
}

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

// Create inserts a new case. The card number must already be encrypted.
func (r *caseRepository) Create(ctx context.Context, c *model.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID finds a case by ID without its card number.
func (r *caseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	var c model.Case
	if err := r.db.WithContext(ctx).Omit(cardNumberColumn).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns cases newest first.
func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]model.Case, error) {
	tx := r.db.WithContext(ctx).Model(&model.Case{})
	if !filter.WithCardNumber {
		tx = tx.Omit(cardNumberColumn)
	}
	if filter.CreatedByID != "" {
		tx = tx.Where("created_by_id = ?", filter.CreatedByID)
	}
	var cases []model.Case
	if err := tx.Order("created_at DESC").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// UpdateResolution writes the resolution columns of c in a single UPDATE.
// Concurrent writers are last-write-wins.
func (r *caseRepository) UpdateResolution(ctx context.Context, c *model.Case) error {
	return r.db.WithContext(ctx).Model(c).
		Select("resolved", "status", "tech_remark", "resolved_at", "updated_at").
		Updates(c).Error
}

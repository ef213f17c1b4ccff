package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"casedesk/internal/model"
	"casedesk/internal/repository"
)

// MockCaseRepository is a mock implementation of CaseRepository.
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, c *model.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseRepository) List(ctx context.Context, filter repository.CaseFilter) ([]model.Case, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Case), args.Error(1)
}

func (m *MockCaseRepository) UpdateResolution(ctx context.Context, c *model.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockCaseLogRepository is a mock implementation of CaseLogRepository.
type MockCaseLogRepository struct {
	mock.Mock
}

func (m *MockCaseLogRepository) Create(ctx context.Context, entry *model.CaseLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCaseLogRepository) CreateBatch(ctx context.Context, entries []model.CaseLog) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockCaseLogRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]model.CaseLog, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseLog), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) bool {
	args := m.Called(ctx, tokenID)
	return args.Bool(0)
}

// recordingAudit collects entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []model.CaseLog
}

func (r *recordingAudit) Record(_ context.Context, entry model.CaseLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []model.CaseAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CaseAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// memoryCaseRepository keeps cases in a map and mimics the column rules of
// the GORM repository.
type memoryCaseRepository struct {
	mu    sync.Mutex
	cases map[uuid.UUID]model.Case
	order []uuid.UUID
}

func newMemoryCaseRepository() *memoryCaseRepository {
	return &memoryCaseRepository{cases: make(map[uuid.UUID]model.Case)}
}

func (r *memoryCaseRepository) Create(_ context.Context, c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.cases[c.ID] = *c
	r.order = append([]uuid.UUID{c.ID}, r.order...)
	return nil
}

func (r *memoryCaseRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.CardNumber = ""
	return &c, nil
}

func (r *memoryCaseRepository) List(_ context.Context, filter repository.CaseFilter) ([]model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Case, 0, len(r.order))
	for _, id := range r.order {
		c := r.cases[id]
		if filter.CreatedByID != "" && c.CreatedByID != filter.CreatedByID {
			continue
		}
		if !filter.WithCardNumber {
			c.CardNumber = ""
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryCaseRepository) UpdateResolution(_ context.Context, c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Resolved = c.Resolved
	stored.Status = c.Status
	stored.TechRemark = c.TechRemark
	stored.ResolvedAt = c.ResolvedAt
	stored.UpdatedAt = time.Now()
	r.cases[c.ID] = stored
	return nil
}

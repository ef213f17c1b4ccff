package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"casedesk/internal/model"
)

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

func TestRecorder_FlushesOnShutdown(t *testing.T) {
	repo := new(MockCaseLogRepository)
	caseID := uuid.New()
	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(entries []model.CaseLog) bool {
		return len(entries) == 3 && entries[0].CaseID == caseID && entries[2].Action == model.CaseActionReopened
	})).Return(nil).Once()

	rec := newRecorder(repo, zap.NewNop(), 10, 10, time.Hour)
	rec.Record(context.Background(), model.CaseLog{CaseID: caseID, Action: model.CaseActionCreated, ByRole: model.RoleAgent})
	rec.Record(context.Background(), model.CaseLog{CaseID: caseID, Action: model.CaseActionResolved, ByRole: model.RoleTech})
	rec.Record(context.Background(), model.CaseLog{CaseID: caseID, Action: model.CaseActionReopened, ByRole: model.RoleTech})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recorder did not stop")
	}
	repo.AssertExpectations(t)
}

func TestRecorder_FlushesFullBatch(t *testing.T) {
	repo := new(MockCaseLogRepository)
	flushed := make(chan int, 1)
	repo.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		flushed <- len(args.Get(1).([]model.CaseLog))
	}).Return(nil)

	rec := newRecorder(repo, zap.NewNop(), 10, 2, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.Record(ctx, model.CaseLog{CaseID: uuid.New(), Action: model.CaseActionCreated})
	rec.Record(ctx, model.CaseLog{CaseID: uuid.New(), Action: model.CaseActionCreated})

	select {
	case n := <-flushed:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("batch was not flushed")
	}
}

func TestRecorder_SynchronousFallback(t *testing.T) {
	repo := new(MockCaseLogRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.CaseLog) bool {
		return e.Action == model.CaseActionResolved && !e.At.IsZero()
	})).Return(errors.New("db down")).Once()

	rec := newRecorder(repo, zap.NewNop(), 0, 10, time.Hour)
	rec.Record(context.Background(), model.CaseLog{CaseID: uuid.New(), Action: model.CaseActionResolved})

	repo.AssertExpectations(t)
}

func TestRecorder_WritesDirectlyAfterStop(t *testing.T) {
	repo := new(MockCaseLogRepository)
	caseID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.CaseLog) bool {
		return e.CaseID == caseID && e.Action == model.CaseActionResolved
	})).Return(nil).Once()

	rec := newRecorder(repo, zap.NewNop(), 10, 10, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	rec.Record(context.Background(), model.CaseLog{CaseID: caseID, Action: model.CaseActionResolved, ByRole: model.RoleTech})

	assert.Empty(t, rec.entries)
	repo.AssertExpectations(t)
}

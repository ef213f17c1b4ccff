package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"casedesk/internal/auth"
	apperrors "casedesk/internal/errors"
	"casedesk/internal/fieldcipher"
	"casedesk/internal/model"
	"casedesk/internal/policy"
	"casedesk/internal/repository"
)

var (
	agent = auth.Identity{UserID: uuid.NewString(), Role: model.RoleAgent, Name: "Agent One"}
	tech  = auth.Identity{UserID: uuid.NewString(), Role: model.RoleTech, Name: "Tech One"}
	admin = auth.Identity{UserID: uuid.NewString(), Role: model.RoleAdmin, Name: "Admin"}
)

func newTestCipher(t *testing.T) *fieldcipher.Cipher {
	t.Helper()
	c, err := fieldcipher.New("default-secret-key-change-this")
	require.NoError(t, err)
	return c
}

func TestCaseService_CreateCase(t *testing.T) {
	tests := []struct {
		name          string
		actor         auth.Identity
		input         CreateCaseInput
		setupMock     func(*MockCaseRepository)
		expectedError error
	}{
		{
			name:  "successful creation encrypts card",
			actor: agent,
			input: CreateCaseInput{CustomerName: "Rajesh Kumar", Phone: "9876543210", CardNumber: "4532123456789012", Amount: decimal.NewFromInt(150)},
			setupMock: func(m *MockCaseRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Case) bool {
					return c.CardNumber == "0df7c50518accb51e4638d26eefad3e2fe1ab87c6f2e7781ef50513425d3e0dc" &&
						c.Status == model.CaseStatusPending &&
						!c.Resolved &&
						c.ResolvedAt == nil &&
						c.CreatedByID == agent.UserID &&
						c.AgentName == agent.Name
				})).Return(nil)
			},
		},
		{
			name:          "missing customer name",
			actor:         agent,
			input:         CreateCaseInput{Phone: "9876543210"},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "missing phone",
			actor:         agent,
			input:         CreateCaseInput{CustomerName: "Rajesh Kumar"},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "short phone",
			actor:         agent,
			input:         CreateCaseInput{CustomerName: "Rajesh Kumar", Phone: "98765"},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "non-digit phone",
			actor:         agent,
			input:         CreateCaseInput{CustomerName: "Rajesh Kumar", Phone: "98765-4321"},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "negative amount",
			actor:         agent,
			input:         CreateCaseInput{CustomerName: "Rajesh Kumar", Phone: "9876543210", Amount: decimal.NewFromInt(-1)},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "tech cannot create",
			actor:         tech,
			input:         CreateCaseInput{CustomerName: "Rajesh Kumar", Phone: "9876543210"},
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCaseRepository)
			tt.setupMock(mockRepo)
			rec := &recordingAudit{}

			svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), rec, zap.NewNop())
			c, err := svc.CreateCase(context.Background(), tt.actor, tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, c)
				assert.Empty(t, rec.actions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.CaseStatusPending, c.Status)
				assert.Equal(t, []model.CaseAction{model.CaseActionCreated}, rec.actions())
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCaseService_CreateCase_WithoutCardStoresEmpty(t *testing.T) {
	mockRepo := new(MockCaseRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Case) bool {
		return c.CardNumber == ""
	})).Return(nil)

	svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), &recordingAudit{}, zap.NewNop())
	_, err := svc.CreateCase(context.Background(), agent, CreateCaseInput{CustomerName: "Priya Sharma", Phone: "9123456780"})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCaseService_CreateCase_RepositoryError(t *testing.T) {
	mockRepo := new(MockCaseRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	rec := &recordingAudit{}

	svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), rec, zap.NewNop())
	_, err := svc.CreateCase(context.Background(), agent, CreateCaseInput{CustomerName: "Priya Sharma", Phone: "9123456780"})

	assert.Error(t, err)
	assert.True(t, apperrors.IsServerError(err))
	assert.Empty(t, rec.actions())
}

func TestCaseService_UpdateResolution(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name           string
		actor          auth.Identity
		fixed          bool
		setupMock      func(*MockCaseRepository)
		expectedError  error
		expectedStatus model.CaseStatus
		expectedAction model.CaseAction
	}{
		{
			name:  "resolve pending case",
			actor: tech,
			fixed: true,
			setupMock: func(m *MockCaseRepository) {
				m.On("FindByID", mock.Anything, id).Return(&model.Case{ID: id, Status: model.CaseStatusPending}, nil)
				m.On("UpdateResolution", mock.Anything, mock.MatchedBy(func(c *model.Case) bool {
					return c.Resolved && c.Status == model.CaseStatusResolved && c.ResolvedAt != nil
				})).Return(nil)
			},
			expectedStatus: model.CaseStatusResolved,
			expectedAction: model.CaseActionResolved,
		},
		{
			name:  "reopen resolved case",
			actor: tech,
			fixed: false,
			setupMock: func(m *MockCaseRepository) {
				at := time.Now()
				m.On("FindByID", mock.Anything, id).Return(&model.Case{ID: id, Resolved: true, Status: model.CaseStatusResolved, ResolvedAt: &at}, nil)
				m.On("UpdateResolution", mock.Anything, mock.MatchedBy(func(c *model.Case) bool {
					return !c.Resolved && c.Status == model.CaseStatusPending && c.ResolvedAt == nil
				})).Return(nil)
			},
			expectedStatus: model.CaseStatusPending,
			expectedAction: model.CaseActionReopened,
		},
		{
			name:  "case not found",
			actor: tech,
			fixed: true,
			setupMock: func(m *MockCaseRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrCaseNotFound,
		},
		{
			name:          "agent cannot resolve",
			actor:         agent,
			fixed:         true,
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "admin cannot resolve",
			actor:         admin,
			fixed:         true,
			setupMock:     func(m *MockCaseRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCaseRepository)
			tt.setupMock(mockRepo)
			rec := &recordingAudit{}

			svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), rec, zap.NewNop())
			c, err := svc.UpdateResolution(context.Background(), tt.actor, id, tt.fixed, "replaced router")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, c)
				assert.Empty(t, rec.actions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, c.Status)
				assert.Equal(t, tt.fixed, c.Resolved)
				assert.Equal(t, "replaced router", c.TechRemark)
				assert.Equal(t, []model.CaseAction{tt.expectedAction}, rec.actions())
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCaseService_ListCasesForAgent_FiltersByCreator(t *testing.T) {
	mockRepo := new(MockCaseRepository)
	mockRepo.On("List", mock.Anything, repository.CaseFilter{CreatedByID: agent.UserID}).
		Return([]model.Case{{ID: uuid.New(), CreatedByID: agent.UserID, Phone: "9876543210", CardNumber: "ignored", Status: model.CaseStatusResolved}}, nil)

	svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), &recordingAudit{}, zap.NewNop())
	views, err := svc.ListCasesForAgent(context.Background(), agent)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "9876543210", views[0].String(policy.FieldPhone))
	assert.NotContains(t, views[0], policy.FieldCardNumber)
	mockRepo.AssertExpectations(t)
}

func TestCaseService_ListCasesForAdmin_DecryptFailure(t *testing.T) {
	mockRepo := new(MockCaseRepository)
	mockRepo.On("List", mock.Anything, repository.CaseFilter{WithCardNumber: true}).
		Return([]model.Case{{ID: uuid.New(), CardNumber: "not-hex", Status: model.CaseStatusPending}}, nil)

	svc := NewCaseService(mockRepo, new(MockCaseLogRepository), newTestCipher(t), &recordingAudit{}, zap.NewNop())
	views, err := svc.ListCasesForAdmin(context.Background(), admin)

	assert.ErrorIs(t, err, apperrors.ErrDecryption)
	assert.Nil(t, views)
}

func TestCaseService_ListOperationsRejectWrongRoles(t *testing.T) {
	svc := NewCaseService(new(MockCaseRepository), new(MockCaseLogRepository), newTestCipher(t), &recordingAudit{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListCasesForTech(ctx, agent)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.ListCasesForAdmin(ctx, tech)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.ListCasesForAgent(ctx, tech)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.ListCaseLogs(ctx, agent, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCaseService_ListCaseLogs(t *testing.T) {
	caseID := uuid.New()
	logRepo := new(MockCaseLogRepository)
	logRepo.On("ListByCaseID", mock.Anything, caseID).Return([]model.CaseLog{
		{CaseID: caseID, Action: model.CaseActionCreated},
		{CaseID: caseID, Action: model.CaseActionResolved},
	}, nil)

	svc := NewCaseService(new(MockCaseRepository), logRepo, newTestCipher(t), &recordingAudit{}, zap.NewNop())
	entries, err := svc.ListCaseLogs(context.Background(), admin, caseID)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
	logRepo.AssertExpectations(t)
}

func TestCaseService_ResolutionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCaseRepository()
	rec := &recordingAudit{}
	svc := NewCaseService(repo, new(MockCaseLogRepository), newTestCipher(t), rec, zap.NewNop())

	created, err := svc.CreateCase(ctx, agent, CreateCaseInput{
		CustomerName: "Rajesh Kumar",
		Phone:        "9876543210",
		CardNumber:   "4532123456789012",
		Issue:        "Card declined at POS terminal",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "4532123456789012", repo.cases[created.ID].CardNumber)

	techViews, err := svc.ListCasesForTech(ctx, tech)
	require.NoError(t, err)
	require.Len(t, techViews, 1)
	assert.Equal(t, "9876543210", techViews[0].String(policy.FieldPhone))
	assert.NotContains(t, techViews[0], policy.FieldCardNumber)

	_, err = svc.UpdateResolution(ctx, tech, created.ID, true, "replaced card reader")
	require.NoError(t, err)

	techViews, err = svc.ListCasesForTech(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, "XXXXXX3210", techViews[0].String(policy.FieldPhone))
	assert.Equal(t, string(model.CaseStatusResolved), techViews[0].String(policy.FieldStatus))
	_, hasFixDate := techViews[0].Time(policy.FieldFixDate)
	assert.True(t, hasFixDate)

	adminViews, err := svc.ListCasesForAdmin(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "4532123456789012", adminViews[0].String(policy.FieldCardNumber))
	assert.Equal(t, "9876543210", adminViews[0].String(policy.FieldPhone))

	_, err = svc.UpdateResolution(ctx, tech, created.ID, false, "customer called back")
	require.NoError(t, err)

	techViews, err = svc.ListCasesForTech(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", techViews[0].String(policy.FieldPhone))
	assert.Nil(t, techViews[0][policy.FieldFixDate])

	stored := repo.cases[created.ID]
	assert.Equal(t, "4532123456789012", mustDecrypt(t, stored.CardNumber))
	assert.Equal(t, []model.CaseAction{
		model.CaseActionCreated,
		model.CaseActionResolved,
		model.CaseActionReopened,
	}, rec.actions())
}

func mustDecrypt(t *testing.T, ciphertext string) string {
	t.Helper()
	plain, err := newTestCipher(t).Decrypt(ciphertext)
	require.NoError(t, err)
	return plain
}

package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"casedesk/internal/auth"
	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/policy"
	"casedesk/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	return e
}

// asUser injects a verified identity the way the auth middleware does.
func asUser(id auth.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.WithIdentity(c, id)
			return next(c)
		}
	}
}

// MockCaseService is a mock implementation of CaseService.
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) CreateCase(ctx context.Context, actor auth.Identity, in service.CreateCaseInput) (*model.Case, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseService) ListCasesForAgent(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]policy.View), args.Error(1)
}

func (m *MockCaseService) ListCasesForTech(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]policy.View), args.Error(1)
}

func (m *MockCaseService) ListCasesForAdmin(ctx context.Context, actor auth.Identity) ([]policy.View, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]policy.View), args.Error(1)
}

func (m *MockCaseService) UpdateResolution(ctx context.Context, actor auth.Identity, id uuid.UUID, fixed bool, remark string) (*model.Case, error) {
	args := m.Called(ctx, actor, id, fixed, remark)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Case), args.Error(1)
}

func (m *MockCaseService) ListCaseLogs(ctx context.Context, actor auth.Identity, caseID uuid.UUID) ([]model.CaseLog, error) {
	args := m.Called(ctx, actor, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseLog), args.Error(1)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, actor auth.Identity, in service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) BootstrapAdmin(ctx context.Context, in service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockExportService is a mock implementation of ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportCases(ctx context.Context, actor auth.Identity) ([]byte, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

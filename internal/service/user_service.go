package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"casedesk/internal/auth"
	apperrors "casedesk/internal/errors"
	"casedesk/internal/model"
	"casedesk/internal/policy"
	"casedesk/internal/repository"
)

const bcryptCost = 10

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Name     string
	Username string
	Password string
	Role     model.Role
}

// UserService manages accounts. Roles never change after creation.
type UserService interface {
	CreateUser(ctx context.Context, actor auth.Identity, in CreateUserInput) (*model.User, error)
	BootstrapAdmin(ctx context.Context, in CreateUserInput) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
	log  *zap.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{repo: repo, log: log}
}

// CreateUser lets an admin add an AGENT or TECH account.
func (s *userService) CreateUser(ctx context.Context, actor auth.Identity, in CreateUserInput) (*model.User, error) {
	if err := policy.Authorize(policy.OpCreateUser, actor.Role); err != nil {
		return nil, err
	}
	if in.Role != model.RoleAgent && in.Role != model.RoleTech {
		return nil, apperrors.Validation("invalid role")
	}
	return s.create(ctx, in)
}

// BootstrapAdmin creates the first ADMIN account. It refuses once any admin exists.
func (s *userService) BootstrapAdmin(ctx context.Context, in CreateUserInput) (*model.User, error) {
	n, err := s.repo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil, apperrors.ErrAdminExists
	}
	in.Role = model.RoleAdmin
	return s.create(ctx, in)
}

func (s *userService) create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	if in.Name == "" || in.Username == "" || in.Password == "" {
		return nil, apperrors.Validation("name, username and password are required")
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: string(hashed),
		Role:         in.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

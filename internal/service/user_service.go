package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"teamtask/internal/domain"
	"teamtask/pkg/utils"
)

// dummyHash keeps the unknown-email path as slow as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("teamtask-unknown-user")
	return h
})

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserService is the credential store: it owns password verifiers and never returns them.
type UserService struct {
	repo               domain.UserRepository
	allowManagerSignup bool
	log                *zap.Logger
}

func NewUserService(repo domain.UserRepository, allowManagerSignup bool, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, allowManagerSignup: allowManagerSignup, log: log}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		return nil, fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, domain.MaxNameLen)
	}
	if utf8.RuneCountInString(email) > domain.MaxEmailLen {
		return nil, fmt.Errorf("%w: email must be at most %d characters", domain.ErrValidation, domain.MaxEmailLen)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	role, err := domain.ParseRole(strings.TrimSpace(in.Role))
	if err != nil {
		return nil, err
	}
	if role == domain.RoleManager && !s.allowManagerSignup {
		return nil, fmt.Errorf("%w: self-registration as manager is disabled", domain.ErrValidation)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	if role == domain.RoleManager {
		s.log.Warn("self-registered manager account", zap.String("uid", u.ID), zap.String("email", u.Email))
	}
	return u, nil
}

// VerifyCredentials fails with ErrInvalidCredentials for both unknown email and wrong password.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = utils.CheckPassword(password, dummyHash())
		return nil, domain.ErrInvalidCredentials
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// Exists is used by the task policy for referential checks on assignedTo.
func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

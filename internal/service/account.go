package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"servicecircle/internal/domain"
	"servicecircle/pkg/utils"
)

const (
	MsgAllFieldsRequired = "All fields are required."
	MsgWomenOnly         = "This platform is women-only."
	MsgConfirmWoman      = "You must confirm you are a woman to continue."
	MsgAccountExists     = "Account already exists. Please login instead."
	MsgNoAccount         = "No account found. Please signup."
	MsgIncorrectPassword = "Incorrect password."
	MsgUnknownRole       = "Role must be receiver or provider."
)

type SignupInput struct {
	Role           string
	Name           string
	Email          string
	Password       string
	GenderDeclared string
	ConfirmWoman   string
}

// AccountService 注册、登录与个人资料
type AccountService struct {
	users domain.UserRepository
	dir   *DirectorySource
	log   *zap.Logger
}

func NewAccountService(users domain.UserRepository, dir *DirectorySource, l *zap.Logger) *AccountService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AccountService{users: users, dir: dir, log: l}
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	role, ok := domain.ParseRole(strings.TrimSpace(in.Role))
	if !ok {
		return nil, domain.ValidationError(MsgUnknownRole)
	}
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.ValidationError(MsgAllFieldsRequired)
	}
	if strings.ToLower(strings.TrimSpace(in.GenderDeclared)) != "woman" {
		return nil, domain.ValidationError(MsgWomenOnly)
	}
	if in.ConfirmWoman != "yes" {
		return nil, domain.ValidationError(MsgConfirmWoman)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateErr(existing.Role, role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Role: role, Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// 并发注册同一邮箱
			return nil, domain.ConflictError(MsgAccountExists)
		}
		return nil, err
	}
	if role == domain.RoleProvider && s.dir != nil {
		s.dir.Invalidate(ctx)
	}
	s.log.Info("account created", zap.Uint64("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

func (s *AccountService) Login(ctx context.Context, role, email, password string) (*domain.User, error) {
	want, ok := domain.ParseRole(strings.TrimSpace(role))
	if !ok {
		return nil, domain.ValidationError(MsgUnknownRole)
	}
	u, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundError(MsgNoAccount)
	}
	if u.Role != want {
		return nil, domain.ForbiddenError(fmt.Sprintf(
			"This email belongs to a %s. Please login as %s.", u.Role.Label(), u.Role.Label()))
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.UnauthorizedError(MsgIncorrectPassword)
	}
	return u, nil
}

func (s *AccountService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundError(MsgAccountNotFound)
	}
	return u, nil
}

func duplicateErr(existing, wanted domain.Role) error {
	if existing == wanted {
		return domain.ConflictError(MsgAccountExists)
	}
	return domain.ConflictError(fmt.Sprintf(
		"This email is registered as a %s. Please login as %s.", existing.Label(), existing.Label()))
}

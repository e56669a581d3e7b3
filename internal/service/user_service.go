package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fittogether/server/internal/audit"
	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/pkg/log"
)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo   repository.UserRepository
	tokens TokenProvider
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens TokenProvider) UserService {
	return &userServiceImpl{
		repo:   repo,
		tokens: tokens,
	}
}

// SignUp registers a new email user.
func (s *userServiceImpl) SignUp(ctx context.Context, form *domain.SignUpForm) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	if form == nil {
		return nil, fmt.Errorf("%w: empty form", ErrInvalidInput)
	}
	form.Nickname = strings.TrimSpace(form.Nickname)
	form.Email = strings.TrimSpace(form.Email)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByNickname(ctx, form.Nickname)
	if err != nil {
		l.Error().Err(err).Msg("failed to check nickname")
		return nil, err
	}
	if taken {
		return nil, ErrNicknameExists
	}

	taken, err = s.repo.ExistsByEmail(ctx, form.Email)
	if err != nil {
		l.Error().Err(err).Msg("failed to check email")
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Nickname:     form.Nickname,
		Email:        form.Email,
		PasswordHash: string(hashedPassword),
		Gender:       form.Gender,
		IsPublic:     form.IsPublic,
		SignUpType:   domain.SignUpTypeEmail,
	}

	// Unique indexes still catch a concurrent sign-up with the same nickname or email.
	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, ErrNicknameExists) && !errors.Is(err, ErrEmailExists) {
			l.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignUp, user.ID, "user signed up", audit.Detail(user.Nickname))

	resp := user.ToResponse()
	return &resp, nil
}

// IsExistNickname reports whether nickname is already registered.
func (s *userServiceImpl) IsExistNickname(ctx context.Context, nickname string) (bool, error) {
	return s.repo.ExistsByNickname(ctx, strings.TrimSpace(nickname))
}

// IsExistEmail reports whether email is already registered.
func (s *userServiceImpl) IsExistEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.TrimSpace(email))
}

// SignIn authenticates an email user and issues a token.
func (s *userServiceImpl) SignIn(ctx context.Context, form *domain.SignInForm) (*domain.TokenResponse, error) {
	l := log.Ctx(ctx)

	if form == nil {
		return nil, fmt.Errorf("%w: empty form", ErrInvalidInput)
	}
	email := strings.TrimSpace(form.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.Log(ctx, audit.ActionSignInFailed, "", "sign in failed: user not found", audit.Detail(email))
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	// OAuth accounts have no password to compare against.
	if user.PasswordHash == "" {
		audit.Log(ctx, audit.ActionSignInFailed, user.ID, "sign in failed: oauth account", audit.Detail(email))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		audit.Log(ctx, audit.ActionSignInFailed, user.ID, "sign in failed: wrong password", audit.Detail(email))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Nickname, user.Email)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate token after sign in")
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignIn, user.ID, "user signed in")

	return &domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fittogether/server/internal/audit"
	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/pkg/log"
)

type kakaoServiceImpl struct {
	client KakaoClient
	users  repository.UserRepository
	tokens TokenProvider
}

// NewKakaoService creates the Kakao sign-in service.
func NewKakaoService(client KakaoClient, users repository.UserRepository, tokens TokenProvider) KakaoService {
	return &kakaoServiceImpl{
		client: client,
		users:  users,
		tokens: tokens,
	}
}

// AuthURL builds the Kakao consent URL with a fresh state value.
func (s *kakaoServiceImpl) AuthURL(ctx context.Context) *domain.KakaoAuthURL {
	state := uuid.NewString()
	l := log.Ctx(ctx)
	l.Debug().Str("state", state).Msg("kakao consent url issued")
	return &domain.KakaoAuthURL{URL: s.client.AuthCodeURL(state), State: state}
}

// SignIn exchanges code with Kakao, finds or creates the local user and issues a token.
func (s *kakaoServiceImpl) SignIn(ctx context.Context, code string) (*domain.TokenResponse, error) {
	l := log.Ctx(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrInvalidInput)
	}

	accessToken, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		l.Warn().Err(err).Msg("kakao code exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrOAuthProvider, err)
	}

	profile, err := s.client.FetchProfile(ctx, accessToken)
	if err != nil {
		l.Warn().Err(err).Msg("kakao profile fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrOAuthProvider, err)
	}

	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		l.Error().Err(err).Str("kakao_id", profile.ID).Msg("failed to resolve kakao user")
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Nickname, user.Email)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate token after kakao sign in")
		return nil, err
	}

	audit.Log(ctx, audit.ActionKakaoSignIn, user.ID, "user signed in with kakao", audit.Detail(profile.ID))

	return &domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// resolveUser matches by Kakao id, then by verified email, and otherwise registers a new user.
// An unverified Kakao email is never matched against or stored on a local account.
func (s *kakaoServiceImpl) resolveUser(ctx context.Context, profile *domain.KakaoProfile) (*domain.User, error) {
	user, err := s.users.GetByProviderID(ctx, domain.SignUpTypeKakao, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	email := ""
	if profile.EmailVerified {
		email = strings.TrimSpace(profile.Email)
	}

	if email != "" {
		user, err = s.users.GetByEmail(ctx, email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	nickname, err := s.availableNickname(ctx, profile)
	if err != nil {
		return nil, err
	}

	if email == "" {
		email = profile.ID + "@kakao.local"
	}

	user = &domain.User{
		Nickname:   nickname,
		Email:      email,
		SignUpType: domain.SignUpTypeKakao,
		ProviderID: profile.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionKakaoSignUp, user.ID, "user signed up with kakao", audit.Detail(profile.ID))
	return user, nil
}

func (s *kakaoServiceImpl) availableNickname(ctx context.Context, profile *domain.KakaoProfile) (string, error) {
	nickname := strings.TrimSpace(profile.Nickname)
	if nickname == "" {
		return "kakao_" + profile.ID, nil
	}

	taken, err := s.users.ExistsByNickname(ctx, nickname)
	if err != nil {
		return "", err
	}
	if taken {
		return nickname + "_" + profile.ID, nil
	}
	return nickname, nil
}

package service

import (
	"context"
	"errors"

	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/pkg/jwt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrOAuthProvider      = errors.New("oauth provider error")

	ErrUserNotFound     = repository.ErrUserNotFound
	ErrChatRoomNotFound = repository.ErrChatRoomNotFound
	ErrNicknameExists   = repository.ErrNicknameExists
	ErrEmailExists      = repository.ErrEmailExists
)

// UserService handles email sign-up and sign-in.
type UserService interface {
	SignUp(ctx context.Context, form *domain.SignUpForm) (*domain.UserResponse, error)
	IsExistNickname(ctx context.Context, nickname string) (bool, error)
	IsExistEmail(ctx context.Context, email string) (bool, error)
	SignIn(ctx context.Context, form *domain.SignInForm) (*domain.TokenResponse, error)
}

// KakaoService signs users in with a Kakao authorization code.
type KakaoService interface {
	SignIn(ctx context.Context, code string) (*domain.TokenResponse, error)
	AuthURL(ctx context.Context) *domain.KakaoAuthURL
}

// DMService manages chat rooms and direct messages.
type DMService interface {
	CreateDMRoom(ctx context.Context, token, receiverNickname string) (*domain.ChatRoom, error)
	// SendMessage only inspects token when sender token checks are enabled.
	SendMessage(ctx context.Context, token string, form *domain.MessageForm) (*domain.Message, error)
	DMLists(ctx context.Context, token string) ([]*domain.ChatRoom, error)
	MessageLists(ctx context.Context, token string, chatRoomID int64) ([]*domain.Message, error)
}

// TokenProvider issues and reads bearer tokens.
type TokenProvider interface {
	GenerateToken(userID, nickname, email string) (token string, expiresAt int64, err error)
	Decode(token string) (*jwt.Claims, error)
}

// KakaoClient is the part of the Kakao API the sign-in flow needs.
type KakaoClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*domain.KakaoProfile, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/fittogether/server/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNicknameExists   = errors.New("nickname already exists")
	ErrEmailExists      = errors.New("email already exists")
	ErrChatRoomNotFound = errors.New("chat room not found")
)

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderID(ctx context.Context, signUpType domain.SignUpType, providerID string) (*domain.User, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ChatRoomRepository persists chat rooms.
type ChatRoomRepository interface {
	Create(ctx context.Context, room *domain.ChatRoom) error
	GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error)
	// ListBySenderNickname and ListByReceiverNickname return rooms ordered by id.
	ListBySenderNickname(ctx context.Context, nickname string) ([]*domain.ChatRoom, error)
	ListByReceiverNickname(ctx context.Context, nickname string) ([]*domain.ChatRoom, error)
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	// Append assigns the next global message id to msg and stores it atomically.
	Append(ctx context.Context, msg *domain.Message) error
	ListByChatRoom(ctx context.Context, chatRoomID int64) ([]*domain.Message, error)
	MaxID(ctx context.Context) (int64, error)
}

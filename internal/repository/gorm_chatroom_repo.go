package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fittogether/server/internal/domain"
)

// GormChatRoomRepository implements ChatRoomRepository using GORM.
type GormChatRoomRepository struct {
	db *gorm.DB
}

// NewGormChatRoomRepository creates a new GORM-based chat room repository.
func NewGormChatRoomRepository(db *gorm.DB) *GormChatRoomRepository {
	return &GormChatRoomRepository{db: db}
}

// Create inserts a room and fills in its generated id.
func (r *GormChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	model := domain.ChatRoomToModel(room)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	room.ID = model.ID
	return nil
}

// GetByID retrieves a room by id.
func (r *GormChatRoomRepository) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	var model domain.ChatRoomModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChatRoomNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormChatRoomRepository) ListBySenderNickname(ctx context.Context, nickname string) ([]*domain.ChatRoom, error) {
	return r.list(ctx, "sender_nickname = ?", nickname)
}

func (r *GormChatRoomRepository) ListByReceiverNickname(ctx context.Context, nickname string) ([]*domain.ChatRoom, error) {
	return r.list(ctx, "receiver_nickname = ?", nickname)
}

func (r *GormChatRoomRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.ChatRoom, error) {
	var models []domain.ChatRoomModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	rooms := make([]*domain.ChatRoom, 0, len(models))
	for i := range models {
		rooms = append(rooms, models[i].ToDomain())
	}
	return rooms, nil
}

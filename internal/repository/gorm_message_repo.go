package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fittogether/server/internal/domain"
)

// MessageSequence is the sequences row holding the last allocated message id.
const MessageSequence = "message"

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Append allocates the next id from the message sequence and inserts msg in
// the same transaction. Concurrent callers are serialized on the sequence row,
// so ids are unique and gapless across all rooms.
func (r *GormMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextMessageID(tx)
		if err != nil {
			return fmt.Errorf("allocate message id: %w", err)
		}

		model := domain.MessageToModel(msg)
		model.ID = id
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		msg.ID = id
		return nil
	})
}

// ListByChatRoom returns the room's messages in send order.
func (r *GormMessageRepository) ListByChatRoom(ctx context.Context, chatRoomID int64) ([]*domain.Message, error) {
	var models []domain.MessageModel
	if err := r.db.WithContext(ctx).Where("chat_room_id = ?", chatRoomID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, models[i].ToDomain())
	}
	return messages, nil
}

// MaxID returns the highest stored message id, or 0 when the log is empty.
func (r *GormMessageRepository) MaxID(ctx context.Context) (int64, error) {
	return maxMessageID(r.db.WithContext(ctx))
}

func maxMessageID(db *gorm.DB) (int64, error) {
	var max int64
	if err := db.Model(&domain.MessageModel{}).Select("COALESCE(MAX(id), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// nextMessageID must run inside a transaction. The increment comes first so
// the sequence row is write-locked before its value is read.
func nextMessageID(tx *gorm.DB) (int64, error) {
	bumped, err := bumpSequence(tx, MessageSequence)
	if err != nil {
		return 0, err
	}
	if !bumped {
		// First message ever, or a log that predates the sequences table.
		seed, err := maxMessageID(tx)
		if err != nil {
			return 0, err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.SequenceModel{Name: MessageSequence, Value: seed}).Error; err != nil {
			return 0, err
		}
		if bumped, err = bumpSequence(tx, MessageSequence); err != nil {
			return 0, err
		}
		if !bumped {
			return 0, fmt.Errorf("sequence %q missing after seeding", MessageSequence)
		}
	}

	var seq domain.SequenceModel
	if err := tx.Where("name = ?", MessageSequence).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func bumpSequence(tx *gorm.DB, name string) (bool, error) {
	result := tx.Model(&domain.SequenceModel{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

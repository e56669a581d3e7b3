package domain

import (
	"time"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Nickname     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255)"`
	Gender       bool      `gorm:"not null;default:false"`
	IsPublic     bool      `gorm:"not null;default:false"`
	SignUpType   string    `gorm:"type:varchar(16);not null"`
	ProviderID   string    `gorm:"type:varchar(64);index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Nickname:     m.Nickname,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Gender:       m.Gender,
		IsPublic:     m.IsPublic,
		SignUpType:   SignUpType(m.SignUpType),
		ProviderID:   m.ProviderID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Nickname:     u.Nickname,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Gender:       u.Gender,
		IsPublic:     u.IsPublic,
		SignUpType:   string(u.SignUpType),
		ProviderID:   u.ProviderID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ChatRoomModel is the GORM model for chat_rooms table.
type ChatRoomModel struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	SenderID         string    `gorm:"type:varchar(36);not null"`
	SenderNickname   string    `gorm:"type:varchar(50);index;not null"`
	ReceiverID       string    `gorm:"type:varchar(36);not null"`
	ReceiverNickname string    `gorm:"type:varchar(50);index;not null"`
	CreatedAt        time.Time `gorm:"not null"`
}

func (ChatRoomModel) TableName() string {
	return "chat_rooms"
}

func (m *ChatRoomModel) ToDomain() *ChatRoom {
	return &ChatRoom{
		ID:               m.ID,
		SenderID:         m.SenderID,
		SenderNickname:   m.SenderNickname,
		ReceiverID:       m.ReceiverID,
		ReceiverNickname: m.ReceiverNickname,
		CreatedAt:        m.CreatedAt,
	}
}

func ChatRoomToModel(r *ChatRoom) *ChatRoomModel {
	return &ChatRoomModel{
		ID:               r.ID,
		SenderID:         r.SenderID,
		SenderNickname:   r.SenderNickname,
		ReceiverID:       r.ReceiverID,
		ReceiverNickname: r.ReceiverNickname,
		CreatedAt:        r.CreatedAt,
	}
}

// MessageModel is the GORM model for messages table.
// IDs come from the "message" row of the sequences table, not from the database.
type MessageModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement:false"`
	ChatRoomID     int64     `gorm:"index;not null"`
	SenderID       string    `gorm:"type:varchar(36);not null"`
	SenderNickname string    `gorm:"type:varchar(50);not null"`
	Contents       string    `gorm:"type:text;not null"`
	SentAt         time.Time `gorm:"not null"`
}

func (MessageModel) TableName() string {
	return "messages"
}

func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:             m.ID,
		ChatRoomID:     m.ChatRoomID,
		SenderID:       m.SenderID,
		SenderNickname: m.SenderNickname,
		Contents:       m.Contents,
		SentAt:         m.SentAt,
	}
}

func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:             msg.ID,
		ChatRoomID:     msg.ChatRoomID,
		SenderID:       msg.SenderID,
		SenderNickname: msg.SenderNickname,
		Contents:       msg.Contents,
		SentAt:         msg.SentAt,
	}
}

// SequenceModel is a named monotonic counter.
type SequenceModel struct {
	Name  string `gorm:"type:varchar(32);primaryKey"`
	Value int64  `gorm:"not null"`
}

func (SequenceModel) TableName() string {
	return "sequences"
}

// Models lists every table owned by the server, in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&ChatRoomModel{},
		&MessageModel{},
		&SequenceModel{},
	}
}

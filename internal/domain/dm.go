package domain

import "time"

// ChatRoom is a direct-message conversation between two users.
// Nicknames are copies taken when the room was created.
type ChatRoom struct {
	ID               int64     `json:"chatRoomId"`
	SenderID         string    `json:"senderId"`
	SenderNickname   string    `json:"senderNickname"`
	ReceiverID       string    `json:"receiverId"`
	ReceiverNickname string    `json:"receiverNickname"`
	CreatedAt        time.Time `json:"chatRoomDt"`
}

// Message is a single immutable direct message.
type Message struct {
	ID             int64     `json:"messageId"`
	ChatRoomID     int64     `json:"chatRoomId"`
	SenderID       string    `json:"senderId"`
	SenderNickname string    `json:"senderNickname"`
	Contents       string    `json:"contents"`
	SentAt         time.Time `json:"sendDt"`
}

// CreateRoomRequest opens a chat room with another user.
type CreateRoomRequest struct {
	ReceiverNickname string `json:"receiverNickname" binding:"required"`
}

// MessageForm is the send-message request.
type MessageForm struct {
	ChatRoomID     int64  `json:"chatRoomId" binding:"required"`
	SenderNickname string `json:"senderNickname" binding:"required"`
	Contents       string `json:"contents" binding:"required"`
}

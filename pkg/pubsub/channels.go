package pubsub

import "fmt"

// ChannelDMRoom carries every event of one chat room.
const ChannelDMRoom = "dm:room:%d"

// Event types for the direct-message subsystem.
const (
	EventRoomCreated = "dm.room_created"
	EventMessageSent = "dm.message_sent"
)

// DMRoomChannel returns the channel name for a chat room's events.
func DMRoomChannel(chatRoomID int64) string {
	return fmt.Sprintf(ChannelDMRoom, chatRoomID)
}

// RoomCreatedPayload is published after a chat room is persisted.
type RoomCreatedPayload struct {
	ChatRoomID       int64  `json:"chat_room_id"`
	SenderNickname   string `json:"sender_nickname"`
	ReceiverNickname string `json:"receiver_nickname"`
}

// MessageSentPayload is published after a message is persisted.
// Contents are left out; consumers fetch them through the API.
type MessageSentPayload struct {
	ChatRoomID     int64  `json:"chat_room_id"`
	MessageID      int64  `json:"message_id"`
	SenderNickname string `json:"sender_nickname"`
}

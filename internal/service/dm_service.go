package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fittogether/server/internal/audit"
	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/pkg/jwt"
	"github.com/fittogether/server/pkg/log"
	"github.com/fittogether/server/pkg/pubsub"
)

// TokenDecoder resolves a bearer token to its claims.
type TokenDecoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// DMOptions tunes DM authorization.
type DMOptions struct {
	// RequireSenderToken makes SendMessage demand a token whose nickname
	// matches the message sender.
	RequireSenderToken bool
}

type dmServiceImpl struct {
	users     repository.UserRepository
	rooms     repository.ChatRoomRepository
	messages  repository.MessageRepository
	tokens    TokenDecoder
	publisher pubsub.Publisher
	opts      DMOptions
	now       func() time.Time
}

// NewDMService creates the direct-message service.
func NewDMService(
	users repository.UserRepository,
	rooms repository.ChatRoomRepository,
	messages repository.MessageRepository,
	tokens TokenDecoder,
	publisher pubsub.Publisher,
	opts DMOptions,
) DMService {
	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}
	return &dmServiceImpl{
		users:     users,
		rooms:     rooms,
		messages:  messages,
		tokens:    tokens,
		publisher: publisher,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *dmServiceImpl) authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		l := log.Ctx(ctx)
		l.Debug().Err(err).Msg("rejected dm token")
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// CreateDMRoom opens a room from the token holder to receiverNickname.
// Repeated calls create separate rooms.
func (s *dmServiceImpl) CreateDMRoom(ctx context.Context, token, receiverNickname string) (*domain.ChatRoom, error) {
	l := log.Ctx(ctx)

	claims, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	sender, err := s.users.GetByNickname(ctx, claims.Nickname)
	if err != nil {
		return nil, s.lookupError(ctx, err, "sender")
	}
	receiver, err := s.users.GetByNickname(ctx, receiverNickname)
	if err != nil {
		return nil, s.lookupError(ctx, err, "receiver")
	}

	room := &domain.ChatRoom{
		SenderID:         sender.ID,
		SenderNickname:   sender.Nickname,
		ReceiverID:       receiver.ID,
		ReceiverNickname: receiver.Nickname,
		CreatedAt:        s.now(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		l.Error().Err(err).Msg("failed to create chat room")
		return nil, err
	}

	roomID := strconv.FormatInt(room.ID, 10)
	audit.Log(ctx, audit.ActionDMRoomCreated, sender.ID, "chat room created", audit.Target(roomID))
	s.publish(ctx, room.ID, pubsub.EventRoomCreated, pubsub.RoomCreatedPayload{
		ChatRoomID:       room.ID,
		SenderNickname:   room.SenderNickname,
		ReceiverNickname: room.ReceiverNickname,
	})

	return room, nil
}

// SendMessage appends a message to a room on behalf of form.SenderNickname.
func (s *dmServiceImpl) SendMessage(ctx context.Context, token string, form *domain.MessageForm) (*domain.Message, error) {
	l := log.Ctx(ctx)

	if form == nil {
		return nil, fmt.Errorf("%w: empty form", ErrInvalidInput)
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	if s.opts.RequireSenderToken {
		claims, err := s.authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		if claims.Nickname != form.SenderNickname {
			audit.Log(ctx, audit.ActionDMAccessDenied, claims.UserID, "sender does not match token", audit.Detail(form.SenderNickname))
			return nil, ErrUnauthorized
		}
	}

	room, err := s.rooms.GetByID(ctx, form.ChatRoomID)
	if err != nil {
		if !errors.Is(err, repository.ErrChatRoomNotFound) {
			l.Error().Err(err).Int64(log.FieldChatRoomID, form.ChatRoomID).Msg("failed to get chat room")
		}
		return nil, err
	}

	sender, err := s.users.GetByNickname(ctx, form.SenderNickname)
	if err != nil {
		return nil, s.lookupError(ctx, err, "sender")
	}

	msg := &domain.Message{
		ChatRoomID:     room.ID,
		SenderID:       sender.ID,
		SenderNickname: sender.Nickname,
		Contents:       form.Contents,
		SentAt:         s.now(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		l.Error().Err(err).Int64(log.FieldChatRoomID, room.ID).Msg("failed to append message")
		return nil, err
	}

	audit.Log(ctx, audit.ActionDMMessageSent, sender.ID, "message sent", audit.Target(strconv.FormatInt(msg.ID, 10)))
	s.publish(ctx, room.ID, pubsub.EventMessageSent, pubsub.MessageSentPayload{
		ChatRoomID:     room.ID,
		MessageID:      msg.ID,
		SenderNickname: msg.SenderNickname,
	})

	return msg, nil
}

// DMLists returns the rooms the token holder started, then the rooms they were invited to.
func (s *dmServiceImpl) DMLists(ctx context.Context, token string) ([]*domain.ChatRoom, error) {
	l := log.Ctx(ctx)

	claims, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByNickname(ctx, claims.Nickname)
	if err != nil {
		return nil, s.lookupError(ctx, err, "caller")
	}

	var sent, received []*domain.ChatRoom
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sent, err = s.rooms.ListBySenderNickname(gctx, user.Nickname)
		return err
	})
	g.Go(func() error {
		var err error
		received, err = s.rooms.ListByReceiverNickname(gctx, user.Nickname)
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("failed to list chat rooms")
		return nil, err
	}

	rooms := make([]*domain.ChatRoom, 0, len(sent)+len(received))
	rooms = append(rooms, sent...)
	rooms = append(rooms, received...)
	return rooms, nil
}

// MessageLists returns a room's messages in send order.
func (s *dmServiceImpl) MessageLists(ctx context.Context, token string, chatRoomID int64) ([]*domain.Message, error) {
	l := log.Ctx(ctx)

	if _, err := s.authenticate(ctx, token); err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, chatRoomID)
	if err != nil {
		if !errors.Is(err, repository.ErrChatRoomNotFound) {
			l.Error().Err(err).Int64(log.FieldChatRoomID, chatRoomID).Msg("failed to get chat room")
		}
		return nil, err
	}

	messages, err := s.messages.ListByChatRoom(ctx, room.ID)
	if err != nil {
		l.Error().Err(err).Int64(log.FieldChatRoomID, room.ID).Msg("failed to list messages")
		return nil, err
	}
	return messages, nil
}

func (s *dmServiceImpl) lookupError(ctx context.Context, err error, role string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	l := log.Ctx(ctx)
	l.Error().Err(err).Str("role", role).Msg("failed to look up user")
	return err
}

// publish is best effort; the write has already committed.
func (s *dmServiceImpl) publish(ctx context.Context, chatRoomID int64, eventType string, payload interface{}) {
	l := log.Ctx(ctx)

	evt, err := pubsub.NewEvent(eventType, strconv.FormatInt(chatRoomID, 10), payload)
	if err != nil {
		l.Warn().Err(err).Str("event", eventType).Msg("failed to build dm event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.DMRoomChannel(chatRoomID), evt); err != nil {
		l.Warn().Err(err).Str("event", eventType).Int64(log.FieldChatRoomID, chatRoomID).Msg("failed to publish dm event")
	}
}

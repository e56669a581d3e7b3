package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/pkg/pubsub"
)

func TestDMAliceBobExample(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	aliceToken := env.signIn(t, "alice")

	room, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", room.SenderNickname)
	assert.Equal(t, "bob", room.ReceiverNickname)

	msg, err := env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{
		ChatRoomID:     room.ID,
		SenderNickname: "bob",
		Contents:       "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "hi", msg.Contents)

	rooms, err := env.dmSvc.DMLists(ctx, aliceToken)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)

	messages, err := env.dmSvc.MessageLists(ctx, aliceToken, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Contents)

	assert.Equal(t, []string{pubsub.EventRoomCreated, pubsub.EventMessageSent}, env.publisher.types())
	assert.Equal(t, pubsub.DMRoomChannel(room.ID), env.publisher.channels[1])
}

func TestCreateDMRoomSnapshotsNicknames(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	token := env.signIn(t, "alice")

	room, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
	require.NoError(t, err)

	stored, err := env.rooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.SenderID)
	assert.Equal(t, alice.Nickname, stored.SenderNickname)
	assert.Equal(t, bob.ID, stored.ReceiverID)
	assert.Equal(t, bob.Nickname, stored.ReceiverNickname)
	assert.False(t, stored.CreatedAt.IsZero())

	again, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, room.ID, again.ID)
}

func TestDMInvalidTokenPersistsNothing(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")

	for _, token := range []string{"", "garbage", "eyJhbGciOiJIUzI1NiJ9.e30.sig"} {
		_, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = env.dmSvc.DMLists(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = env.dmSvc.MessageLists(ctx, token, 1)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	assert.Zero(t, env.count(t, &domain.ChatRoomModel{}))
	assert.Empty(t, env.publisher.types())
}

func TestCreateDMRoomUnknownNicknames(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	token := env.signIn(t, "alice")

	_, err := env.dmSvc.CreateDMRoom(ctx, token, "carol")
	assert.ErrorIs(t, err, ErrUserNotFound)

	ghost, _, err := env.tokens.GenerateToken("ghost-id", "ghost", "ghost@x.com")
	require.NoError(t, err)
	_, err = env.dmSvc.CreateDMRoom(ctx, ghost, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.dmSvc.DMLists(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Zero(t, env.count(t, &domain.ChatRoomModel{}))
}

func TestSendMessageNotFound(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	room, err := env.dmSvc.CreateDMRoom(ctx, env.signIn(t, "alice"), "bob")
	require.NoError(t, err)

	_, err = env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{ChatRoomID: room.ID + 100, SenderNickname: "bob", Contents: "hi"})
	assert.ErrorIs(t, err, ErrChatRoomNotFound)

	_, err = env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{ChatRoomID: room.ID, SenderNickname: "carol", Contents: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{ChatRoomID: room.ID, SenderNickname: "bob"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, env.count(t, &domain.MessageModel{}))
}

func TestSendMessageConcurrentIDs(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	token := env.signIn(t, "alice")

	roomA, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
	require.NoError(t, err)
	roomB, err := env.dmSvc.CreateDMRoom(ctx, token, "alice")
	require.NoError(t, err)

	const n = 30
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomID := roomA.ID
			if i%2 == 1 {
				roomID = roomB.ID
			}
			msg, err := env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{ChatRoomID: roomID, SenderNickname: "bob", Contents: "x"})
			errs[i] = err
			if err == nil {
				ids[i] = msg.ID
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestMessageListsReturnsOnlyRoomMessagesInOrder(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	token := env.signIn(t, "alice")

	roomA, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
	require.NoError(t, err)
	roomB, err := env.dmSvc.CreateDMRoom(ctx, token, "bob")
	require.NoError(t, err)

	send := func(roomID int64, sender, contents string) {
		_, err := env.dmSvc.SendMessage(ctx, "", &domain.MessageForm{ChatRoomID: roomID, SenderNickname: sender, Contents: contents})
		require.NoError(t, err)
	}
	send(roomA.ID, "alice", "a1")
	send(roomB.ID, "bob", "b1")
	send(roomA.ID, "bob", "a2")
	send(roomA.ID, "alice", "a3")

	messages, err := env.dmSvc.MessageLists(ctx, token, roomA.ID)
	require.NoError(t, err)
	var contents []string
	for _, m := range messages {
		assert.Equal(t, roomA.ID, m.ChatRoomID)
		contents = append(contents, m.Contents)
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, contents)

	_, err = env.dmSvc.MessageLists(ctx, token, 9999)
	assert.ErrorIs(t, err, ErrChatRoomNotFound)
}

func TestDMListsSenderRoomsThenReceiverRooms(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	env.signUp(t, "carol")
	aliceToken := env.signIn(t, "alice")
	bobToken := env.signIn(t, "bob")
	carolToken := env.signIn(t, "carol")

	fromBob, err := env.dmSvc.CreateDMRoom(ctx, bobToken, "alice")
	require.NoError(t, err)
	toBob, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "bob")
	require.NoError(t, err)
	fromCarol, err := env.dmSvc.CreateDMRoom(ctx, carolToken, "alice")
	require.NoError(t, err)
	toCarol, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "carol")
	require.NoError(t, err)

	rooms, err := env.dmSvc.DMLists(ctx, aliceToken)
	require.NoError(t, err)

	var ids []int64
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{toBob.ID, toCarol.ID, fromBob.ID, fromCarol.ID}, ids)
}

func TestDMListsSelfRoomAppearsTwice(t *testing.T) {
	env := newTestEnv(t, DMOptions{})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	aliceToken := env.signIn(t, "alice")

	toBob, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "bob")
	require.NoError(t, err)
	self, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", self.SenderNickname)
	assert.Equal(t, "alice", self.ReceiverNickname)

	rooms, err := env.dmSvc.DMLists(ctx, aliceToken)
	require.NoError(t, err)

	var ids []int64
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{toBob.ID, self.ID, self.ID}, ids)
}

func TestSendMessageRequireSenderToken(t *testing.T) {
	env := newTestEnv(t, DMOptions{RequireSenderToken: true})
	ctx := context.Background()
	env.signUp(t, "alice")
	env.signUp(t, "bob")
	aliceToken := env.signIn(t, "alice")
	bobToken := env.signIn(t, "bob")

	room, err := env.dmSvc.CreateDMRoom(ctx, aliceToken, "bob")
	require.NoError(t, err)
	form := &domain.MessageForm{ChatRoomID: room.ID, SenderNickname: "bob", Contents: "hi"}

	_, err = env.dmSvc.SendMessage(ctx, "", form)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.dmSvc.SendMessage(ctx, aliceToken, form)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, env.count(t, &domain.MessageModel{}))

	msg, err := env.dmSvc.SendMessage(ctx, bobToken, form)
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
}

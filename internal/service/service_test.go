package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/pkg/database"
	"github.com/fittogether/server/pkg/jwt"
	"github.com/fittogether/server/pkg/pubsub"
)

type testEnv struct {
	db        *gorm.DB
	users     *repository.GormUserRepository
	rooms     *repository.GormChatRoomRepository
	messages  *repository.GormMessageRepository
	tokens    *jwt.Manager
	publisher *recordingPublisher
	userSvc   UserService
	dmSvc     DMService
}

func newTestEnv(t *testing.T, opts DMOptions) *testEnv {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))
	t.Cleanup(func() { _ = database.Close(db) })

	tokens, err := jwt.NewManager("test-secret", time.Hour, "fittogether")
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		users:     repository.NewGormUserRepository(db),
		rooms:     repository.NewGormChatRoomRepository(db),
		messages:  repository.NewGormMessageRepository(db),
		tokens:    tokens,
		publisher: &recordingPublisher{},
	}
	env.userSvc = NewUserService(env.users, tokens)
	env.dmSvc = NewDMService(env.users, env.rooms, env.messages, tokens, env.publisher, opts)
	return env
}

func (e *testEnv) signUp(t *testing.T, nickname string) *domain.UserResponse {
	t.Helper()

	u, err := e.userSvc.SignUp(context.Background(), &domain.SignUpForm{
		Nickname: nickname,
		Email:    nickname + "@x.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) signIn(t *testing.T, nickname string) string {
	t.Helper()

	tok, err := e.userSvc.SignIn(context.Background(), &domain.SignInForm{
		Email:    nickname + "@x.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	return tok.Token
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	events   []*pubsub.Event
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

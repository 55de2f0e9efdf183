package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/repo"
	"github.com/Skotchmaster/teamchat/internal/testutil"
)

var (
	testAccessSecret  = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type recordedEvent struct {
	Topic string
	Key   string
	Event mykafka.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event.(mykafka.Event)})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event.Type)
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	events   *recordingPublisher
	auth     *AuthService
	users    *UserService
	teams    *TeamService
	channels *ChannelService
	messages *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := repo.New(db)
	events := &recordingPublisher{}
	teams := &TeamService{Repo: r, Events: events}

	return &testEnv{
		db:     db,
		repo:   r,
		events: events,
		auth: &AuthService{
			Repo:          r,
			Events:        events,
			AccessSecret:  testAccessSecret,
			RefreshSecret: testRefreshSecret,
		},
		users:    &UserService{Repo: r, Events: events},
		teams:    teams,
		channels: &ChannelService{Repo: r, Teams: teams, Events: events},
		messages: &MessageService{Repo: r, Events: events},
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	res := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.True(t, res.OK, "register %s: %+v", username, res.Errors)
	return res.User
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

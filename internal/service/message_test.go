package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/teamchat/internal/models"
)

type fakeIndex struct {
	indexed []models.Message
	err     error

	gotQuery string
	gotFrom  int
	gotSize  int
}

func (f *fakeIndex) IndexMessage(_ context.Context, msg models.Message) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, msg)
	return nil
}

func (f *fakeIndex) SearchMessages(_ context.Context, channelID uint, query string, from, size int) (int64, []models.Message, error) {
	f.gotQuery, f.gotFrom, f.gotSize = query, from, size
	var out []models.Message
	for _, m := range f.indexed {
		if m.ChannelID == channelID && strings.Contains(m.Text, query) {
			out = append(out, m)
		}
	}
	return int64(len(out)), out, nil
}

type fakeNotifier struct {
	sent []models.Message
}

func (f *fakeNotifier) NotifyMessage(_ context.Context, msg models.Message) {
	f.sent = append(f.sent, msg)
}

func TestCreateMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)
	general, err := env.repo.ChannelByName(ctx, team.Team.ID, "general")
	require.NoError(t, err)

	idx := &fakeIndex{}
	notifier := &fakeNotifier{}
	env.messages.Index = idx
	env.messages.Notifier = notifier

	msg, err := env.messages.CreateMessage(ctx, alice.ID, general.ID, "  hello team  ")
	require.NoError(t, err)
	assert.Equal(t, "hello team", msg.Text)
	assert.NotZero(t, msg.ID)

	require.Len(t, idx.indexed, 1)
	assert.Equal(t, msg.ID, idx.indexed[0].ID)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, env.events.types(), "message_created")

	list, err := env.messages.Messages(ctx, general.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello team", list[0].Text)
}

func TestCreateMessage_IndexFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)
	general, err := env.repo.ChannelByName(ctx, team.Team.ID, "general")
	require.NoError(t, err)

	env.messages.Index = &fakeIndex{err: errors.New("es down")}

	_, err = env.messages.CreateMessage(ctx, alice.ID, general.ID, "still stored")
	require.NoError(t, err)
	assert.EqualValues(t, 1, env.count(t, &models.Message{}))
}

func TestCreateMessage_InvalidText(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	for _, text := range []string{"", "   ", strings.Repeat("x", maxMessageLength+1)} {
		_, err := env.messages.CreateMessage(context.Background(), alice.ID, 1, text)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, env.count(t, &models.Message{}))
}

func TestMessages_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.messages.CreateMessage(ctx, alice.ID, 7, text)
		require.NoError(t, err)
	}

	page1, err := env.messages.Messages(ctx, 7, 1, 2)
	require.NoError(t, err)
	page2, err := env.messages.Messages(ctx, 7, 2, 2)
	require.NoError(t, err)

	require.Len(t, page1, 2)
	require.Len(t, page2, 1)
	assert.Equal(t, "one", page1[0].Text)
	assert.Equal(t, "three", page2[0].Text)
}

func TestDirectMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	_, err := env.messages.CreateDirectMessage(ctx, alice.ID, bob.ID, 1, "hi bob")
	require.NoError(t, err)
	_, err = env.messages.CreateDirectMessage(ctx, bob.ID, alice.ID, 1, "hi alice")
	require.NoError(t, err)
	_, err = env.messages.CreateDirectMessage(ctx, alice.ID, carol.ID, 1, "hi carol")
	require.NoError(t, err)

	conv, err := env.messages.DirectMessages(ctx, 1, bob.ID, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi bob", conv[0].Text)
	assert.Equal(t, "hi alice", conv[1].Text)

	assert.Contains(t, env.events.types(), "direct_message_created")
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.messages.Search(ctx, 1, "hello", 1, 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	idx := &fakeIndex{indexed: []models.Message{
		{ID: 1, ChannelID: 1, Text: "hello world"},
		{ID: 2, ChannelID: 2, Text: "hello elsewhere"},
	}}
	env.messages.Index = idx

	res, err := env.messages.Search(ctx, 1, " hello ", 2, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, uint(1), res.Messages[0].ID)
	assert.Equal(t, "hello", idx.gotQuery)
	assert.Equal(t, 5, idx.gotFrom)
	assert.Equal(t, 5, idx.gotSize)

	res, err = env.messages.Search(ctx, 1, "   ", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/teamchat/internal/models"
)

func TestCreateChannel_NonAdminIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)
	require.True(t, env.teams.AddTeamMember(ctx, alice.ID, "bob@example.com", team.Team.ID).OK)

	res := env.channels.CreateChannel(ctx, bob.ID, CreateChannelInput{TeamID: team.Team.ID, Name: "random", Public: true})
	assert.False(t, res.OK)
	assert.Nil(t, res.Channel)
	assert.Equal(t, []FieldError{{Path: "name", Message: "You have to be the owner of the team to create channels"}}, res.Errors)

	assert.EqualValues(t, 1, env.count(t, &models.Channel{}))
}

func TestCreateChannel_Public(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)

	res := env.channels.CreateChannel(ctx, alice.ID, CreateChannelInput{TeamID: team.Team.ID, Name: "random", Public: true})
	require.True(t, res.OK, "%+v", res.Errors)
	assert.Equal(t, "random", res.Channel.Name)
	assert.True(t, res.Channel.Public)
	assert.NotEmpty(t, res.Channel.UUID)
	assert.Zero(t, env.count(t, &models.ChannelMember{}))
}

func TestCreateChannel_PrivateVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)
	require.True(t, env.teams.AddTeamMember(ctx, alice.ID, "bob@example.com", team.Team.ID).OK)
	require.True(t, env.teams.AddTeamMember(ctx, alice.ID, "carol@example.com", team.Team.ID).OK)

	res := env.channels.CreateChannel(ctx, alice.ID, CreateChannelInput{
		TeamID:  team.Team.ID,
		Name:    "secret",
		Members: []uint{bob.ID, bob.ID},
	})
	require.True(t, res.OK, "%+v", res.Errors)
	assert.False(t, res.Channel.Public)
	assert.EqualValues(t, 2, env.count(t, &models.ChannelMember{}))

	names := func(userID uint) []string {
		chs, err := env.teams.Channels(ctx, team.Team.ID, userID)
		require.NoError(t, err)
		out := make([]string, 0, len(chs))
		for _, ch := range chs {
			out = append(out, ch.Name)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"general", "secret"}, names(alice.ID))
	assert.ElementsMatch(t, []string{"general", "secret"}, names(bob.ID))
	assert.ElementsMatch(t, []string{"general"}, names(carol.ID))
}

func TestCreateChannel_MembersOutsideTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	outsider := env.register(t, "dave")

	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)

	res := env.channels.CreateChannel(ctx, alice.ID, CreateChannelInput{
		TeamID:  team.Team.ID,
		Name:    "secret",
		Members: []uint{outsider.ID},
	})
	assert.False(t, res.OK)
	assert.Equal(t, []FieldError{{Path: "members", Message: MsgChannelMembersOutside}}, res.Errors)
	assert.EqualValues(t, 1, env.count(t, &models.Channel{}))
}

func TestCreateChannel_BlankName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	team := env.teams.CreateTeam(ctx, alice.ID, "acme")
	require.True(t, team.OK)

	res := env.channels.CreateChannel(ctx, alice.ID, CreateChannelInput{TeamID: team.Team.ID, Name: " ", Public: true})
	assert.False(t, res.OK)
	assert.Equal(t, []FieldError{{Path: "name", Message: MsgChannelNameRequired}}, res.Errors)
}

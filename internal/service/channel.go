package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/repo"
)

type ChannelService struct {
	Repo   *repo.GormRepo
	Teams  *TeamService
	Events EventPublisher
}

type CreateChannelInput struct {
	TeamID  uint
	Name    string
	Public  bool
	Members []uint
}

type CreateChannelResult struct {
	OK      bool
	Channel *models.Channel
	Errors  []FieldError
}

// CreateChannel is restricted to team admins. Private channels get a member
// row for the creator and every listed user.
func (s *ChannelService) CreateChannel(ctx context.Context, viewerID uint, in CreateChannelInput) CreateChannelResult {
	l := logging.FromContext(ctx).With("svc", "channel.create", "team_id", in.TeamID, "user_id", viewerID)

	admin, err := s.Teams.IsAdmin(ctx, in.TeamID, viewerID)
	if err != nil {
		l.Error("create_channel_failed", "status", 500, "reason", "admin check", "error", err)
		return CreateChannelResult{Errors: fail("name", MsgSomethingWentWrong)}
	}
	if !admin {
		l.Warn("create_channel_denied", "status", 403)
		return CreateChannelResult{Errors: fail("name", MsgNotChannelOwner)}
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CreateChannelResult{Errors: fail("name", MsgChannelNameRequired)}
	}

	var members []uint
	if !in.Public {
		members = uniqueIDs(append([]uint{viewerID}, in.Members...))
		n, err := s.Repo.CountTeamMembers(ctx, in.TeamID, members)
		if err != nil {
			l.Error("create_channel_failed", "status", 500, "reason", "member check", "error", err)
			return CreateChannelResult{Errors: fail("name", MsgSomethingWentWrong)}
		}
		if n != int64(len(members)) {
			return CreateChannelResult{Errors: fail("members", MsgChannelMembersOutside)}
		}
	}

	ch := &models.Channel{Name: name, Public: in.Public, TeamID: in.TeamID}
	if err := s.Repo.CreateChannel(ctx, ch, members); err != nil {
		l.Error("create_channel_failed", "status", 500, "error", err)
		return CreateChannelResult{Errors: fail("name", MsgSomethingWentWrong)}
	}

	l.Info("channel_created", "channel_id", ch.ID)
	publish(ctx, s.Events, mykafka.TopicTeamEvents, in.TeamID, "channel_created", map[string]any{
		"team_id":    in.TeamID,
		"channel_id": ch.ID,
		"public":     ch.Public,
	})
	return CreateChannelResult{OK: true, Channel: ch}
}

// Channel returns nil without an error when the channel does not exist.
func (s *ChannelService) Channel(ctx context.Context, id uint) (*models.Channel, error) {
	ch, err := s.Repo.ChannelByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return ch, err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

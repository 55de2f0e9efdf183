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

type TeamService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type CreateTeamResult struct {
	OK          bool
	Team        *models.Team
	ChannelUUID string
	Errors      []FieldError
}

// CreateTeam provisions a team with its general channel and the owner's
// admin membership. Team names are unique per owner.
func (s *TeamService) CreateTeam(ctx context.Context, ownerID uint, name string) CreateTeamResult {
	l := logging.FromContext(ctx).With("svc", "team.create", "owner", ownerID)

	name = strings.TrimSpace(name)
	if name == "" {
		return CreateTeamResult{Errors: fail("name", MsgTeamNameRequired)}
	}

	exists, err := s.Repo.TeamExists(ctx, name, ownerID)
	if err != nil {
		l.Error("create_team_failed", "status", 500, "reason", "duplicate check", "error", err)
		return CreateTeamResult{Errors: fail("name", MsgSomethingWentWrong)}
	}
	if exists {
		l.Warn("create_team_failed", "status", 409, "reason", "team name already exists", "name", name)
		return CreateTeamResult{Errors: fail("name", MsgTeamNameExists)}
	}

	team, channel, err := s.Repo.ProvisionTeam(ctx, ownerID, name)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("create_team_failed", "status", 409, "reason", "team name already exists", "name", name)
			return CreateTeamResult{Errors: fail("name", MsgTeamNameExists)}
		}
		l.Error("create_team_failed", "status", 500, "reason", "transaction rolled back", "error", err)
		return CreateTeamResult{Errors: fail("name", MsgSomethingWentWrong)}
	}

	l.Info("team_created", "team_id", team.ID)
	publish(ctx, s.Events, mykafka.TopicTeamEvents, team.ID, "team_created", map[string]any{
		"team_id":    team.ID,
		"team_uuid":  team.UUID,
		"owner":      ownerID,
		"channel_id": channel.ID,
	})
	return CreateTeamResult{OK: true, Team: team, ChannelUUID: channel.UUID}
}

// AddTeamMember lets a team admin add another user by email.
func (s *TeamService) AddTeamMember(ctx context.Context, viewerID uint, email string, teamID uint) Result {
	l := logging.FromContext(ctx).With("svc", "team.add_member", "team_id", teamID, "user_id", viewerID)

	admin, err := s.IsAdmin(ctx, teamID, viewerID)
	if err != nil {
		l.Error("add_member_failed", "status", 500, "reason", "admin check", "error", err)
		return Result{Errors: fail("email", MsgSomethingWentWrong)}
	}
	if !admin {
		l.Warn("add_member_denied", "status", 403)
		return Result{Errors: fail("email", MsgCannotAddMembers)}
	}

	user, err := s.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Result{Errors: fail("email", MsgUnknownEmail)}
		}
		l.Error("add_member_failed", "status", 500, "reason", "user lookup", "error", err)
		return Result{Errors: fail("email", MsgSomethingWentWrong)}
	}

	if err := s.Repo.AddMember(ctx, teamID, user.ID, false); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return Result{Errors: fail("email", MsgAlreadyMember)}
		}
		l.Error("add_member_failed", "status", 500, "error", err)
		return Result{Errors: fail("email", MsgSomethingWentWrong)}
	}

	l.Info("member_added", "member_id", user.ID)
	publish(ctx, s.Events, mykafka.TopicTeamEvents, teamID, "member_added", map[string]any{
		"team_id":  teamID,
		"user_id":  user.ID,
		"added_by": viewerID,
	})
	return Result{OK: true}
}

func (s *TeamService) IsAdmin(ctx context.Context, teamID, userID uint) (bool, error) {
	m, err := s.Repo.Member(ctx, teamID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Admin, nil
}

func (s *TeamService) TeamMembers(ctx context.Context, teamID uint) ([]models.User, error) {
	return s.Repo.TeamMembers(ctx, teamID)
}

func (s *TeamService) Channels(ctx context.Context, teamID, viewerID uint) ([]models.Channel, error) {
	return s.Repo.VisibleChannels(ctx, teamID, viewerID)
}

func (s *TeamService) DirectMessageMembers(ctx context.Context, teamID, viewerID uint) ([]models.User, error) {
	return s.Repo.DirectMessagePartners(ctx, teamID, viewerID)
}

// Team returns nil without an error when the team does not exist.
func (s *TeamService) Team(ctx context.Context, id uint) (*models.Team, error) {
	t, err := s.Repo.TeamByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

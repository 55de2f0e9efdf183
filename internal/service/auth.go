package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/teamchat/internal/hash"
	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/repo"
	"github.com/Skotchmaster/teamchat/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	Events        EventPublisher
	AccessSecret  []byte
	RefreshSecret []byte

	// Now defaults to time.Now.
	Now func() time.Time
}

type LoginResult struct {
	OK           bool
	User         *models.User
	TeamUUID     string
	ChannelUUID  string
	Token        string
	RefreshToken string
	Errors       []FieldError
}

// RefreshResult is empty when no refresh was possible.
type RefreshResult struct {
	Token        string
	RefreshToken string
	User         *models.User
}

func (r RefreshResult) OK() bool { return r.Token != "" && r.User != nil }

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueTokens signs a pair for the user, deriving the refresh secret from
// the user's current password hash.
func (s *AuthService) IssueTokens(user *models.User) (tokens.Pair, error) {
	return tokens.Issue(
		tokens.UserClaim{ID: user.ID, Username: user.Username},
		s.AccessSecret,
		tokens.DeriveRefreshSecret(user.PasswordHash, s.RefreshSecret),
		s.now(),
	)
}

// Login never fails with an error: every outcome is reported in the result.
func (s *AuthService) Login(ctx context.Context, email, password string) LoginResult {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return LoginResult{Errors: fail("", MsgInvalidLogin)}
		}
		l.Error("login_failed", "status", 500, "reason", "user lookup", "error", err)
		return LoginResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return LoginResult{Errors: fail("", MsgInvalidLogin)}
	}

	pair, err := s.IssueTokens(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return LoginResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	res := LoginResult{OK: true, User: user, Token: pair.Token, RefreshToken: pair.RefreshToken}

	teamUUID, channelUUID, err := s.defaultTeam(ctx, user.ID)
	if err != nil {
		l.Error("default_team_lookup_failed", "user_id", user.ID, "error", err)
		res.Errors = fail("team", MsgDefaultTeamUnavailable)
	}
	res.TeamUUID, res.ChannelUUID = teamUUID, channelUUID

	l.Info("login_successful", "user_id", user.ID)
	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, "user_logged_in", map[string]any{"user_id": user.ID})
	return res
}

// defaultTeam resolves the team of the earliest membership and its general
// channel. A user without teams is not an error.
func (s *AuthService) defaultTeam(ctx context.Context, userID uint) (teamUUID, channelUUID string, err error) {
	team, err := s.Repo.FirstTeamForUser(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("first team: %w", err)
	}

	ch, err := s.Repo.ChannelByName(ctx, team.ID, repo.DefaultChannelName)
	if errors.Is(err, repo.ErrNotFound) {
		return team.UUID, "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("default channel: %w", err)
	}
	return team.UUID, ch.UUID, nil
}

// Refresh exchanges a refresh token for a new pair. The signature is checked
// against the secret derived from the claimed user's current password hash.
// The access token is only logged, never verified. Refresh never fails with
// an error; a zero result means no refresh.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) RefreshResult {
	l := logging.FromContext(ctx).With("svc", "auth.refresh", "has_access_token", accessToken != "")

	claims, err := tokens.Decode(refreshToken)
	if err != nil {
		l.Debug("refresh_rejected", "reason", "malformed token", "error", err)
		return RefreshResult{}
	}

	user, err := s.Repo.UserByID(ctx, claims.User.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_rejected", "reason", "unknown user", "user_id", claims.User.ID)
		} else {
			l.Error("refresh_rejected", "reason", "user lookup", "user_id", claims.User.ID, "error", err)
		}
		return RefreshResult{}
	}

	if _, err := tokens.Parse(refreshToken, tokens.DeriveRefreshSecret(user.PasswordHash, s.RefreshSecret)); err != nil {
		l.Warn("refresh_rejected", "reason", "invalid refresh token", "user_id", user.ID, "error", err)
		return RefreshResult{}
	}

	pair, err := s.IssueTokens(user)
	if err != nil {
		l.Error("refresh_failed", "reason", "cannot sign tokens", "user_id", user.ID, "error", err)
		return RefreshResult{}
	}

	return RefreshResult{Token: pair.Token, RefreshToken: pair.RefreshToken, User: user}
}

package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/teamchat/internal/repo"
)

var (
	ErrNotAuthenticated = errors.New("Not authenticated")
	ErrNoTeamAccess     = errors.New("You have to be a member of the team to access its channels.")
	ErrNotTeamMember    = errors.New("You have to be a member of the team.")
	ErrNoDirectMessage  = errors.New("Both users have to be members of the team to exchange direct messages.")
	ErrNoChannelAccess  = errors.New("You have to be a member of this private channel.")
)

// IsDenied reports whether err is a gate rejection as opposed to a failure
// while evaluating the gate.
func IsDenied(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrNoTeamAccess) ||
		errors.Is(err, ErrNotTeamMember) ||
		errors.Is(err, ErrNoDirectMessage) ||
		errors.Is(err, ErrNoChannelAccess)
}

// Gate is an authorization predicate. A nil error lets the call through.
type Gate[A any] func(ctx context.Context, args A) error

type Resolver[A, R any] func(ctx context.Context, args A) (R, error)

// Pipeline is an ordered list of gates evaluated first to last.
type Pipeline[A any] []Gate[A]

func Chain[A any](gates ...Gate[A]) Pipeline[A] {
	return append(Pipeline[A](nil), gates...)
}

// Then returns a new pipeline with g appended; p is left unchanged.
func (p Pipeline[A]) Then(g Gate[A]) Pipeline[A] {
	out := make(Pipeline[A], 0, len(p)+1)
	out = append(out, p...)
	return append(out, g)
}

func (p Pipeline[A]) Check(ctx context.Context, args A) error {
	for _, g := range p {
		if err := g(ctx, args); err != nil {
			return err
		}
	}
	return nil
}

// Wrap composes the pipeline with r. The first failing gate aborts the call
// and r is never invoked.
func Wrap[A, R any](p Pipeline[A], r Resolver[A, R]) Resolver[A, R] {
	gates := Chain(p...)
	return func(ctx context.Context, args A) (R, error) {
		if err := gates.Check(ctx, args); err != nil {
			var zero R
			return zero, err
		}
		return r(ctx, args)
	}
}

// MembershipStore answers the lookups the team and channel gates need.
// ChannelTeamID returns repo.ErrNotFound for an unknown channel.
type MembershipStore interface {
	ChannelTeamID(ctx context.Context, channelID uint) (uint, error)
	CountTeamMembers(ctx context.Context, teamID uint, userIDs []uint) (int64, error)
	CanReadChannel(ctx context.Context, channelID, userID uint) (bool, error)
}

func Authenticated[A any]() Gate[A] {
	return func(ctx context.Context, _ A) error {
		if _, ok := IdentityFrom(ctx); !ok {
			return ErrNotAuthenticated
		}
		return nil
	}
}

// TeamAccess requires the caller to be a member of the team that owns the
// channel picked from the arguments.
func TeamAccess[A any](store MembershipStore, channelID func(A) uint) Gate[A] {
	return func(ctx context.Context, args A) error {
		me, ok := IdentityFrom(ctx)
		if !ok {
			return ErrNotAuthenticated
		}
		teamID, err := store.ChannelTeamID(ctx, channelID(args))
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNoTeamAccess
			}
			return fmt.Errorf("team access: %w", err)
		}
		n, err := store.CountTeamMembers(ctx, teamID, []uint{me.ID})
		if err != nil {
			return fmt.Errorf("team access: %w", err)
		}
		if n == 0 {
			return ErrNoTeamAccess
		}
		return nil
	}
}

func TeamMember[A any](store MembershipStore, teamID func(A) uint) Gate[A] {
	return func(ctx context.Context, args A) error {
		me, ok := IdentityFrom(ctx)
		if !ok {
			return ErrNotAuthenticated
		}
		n, err := store.CountTeamMembers(ctx, teamID(args), []uint{me.ID})
		if err != nil {
			return fmt.Errorf("team member: %w", err)
		}
		if n == 0 {
			return ErrNotTeamMember
		}
		return nil
	}
}

// DirectMessageAccess requires both the caller and the other party to be
// members of the team.
func DirectMessageAccess[A any](store MembershipStore, teamID, otherUserID func(A) uint) Gate[A] {
	return func(ctx context.Context, args A) error {
		me, ok := IdentityFrom(ctx)
		if !ok {
			return ErrNotAuthenticated
		}
		ids := []uint{me.ID}
		if other := otherUserID(args); other != me.ID {
			ids = append(ids, other)
		}
		n, err := store.CountTeamMembers(ctx, teamID(args), ids)
		if err != nil {
			return fmt.Errorf("direct message access: %w", err)
		}
		if n < int64(len(ids)) {
			return ErrNoDirectMessage
		}
		return nil
	}
}

// ChannelAccess lets the caller through public channels and the private
// channels they were added to. It does not check team membership; chain it
// after TeamAccess.
func ChannelAccess[A any](store MembershipStore, channelID func(A) uint) Gate[A] {
	return func(ctx context.Context, args A) error {
		me, ok := IdentityFrom(ctx)
		if !ok {
			return ErrNotAuthenticated
		}
		allowed, err := store.CanReadChannel(ctx, channelID(args), me.ID)
		if err != nil {
			return fmt.Errorf("channel access: %w", err)
		}
		if !allowed {
			return ErrNoChannelAccess
		}
		return nil
	}
}

// ChannelReader is the full gate for reading or posting to a channel.
func ChannelReader[A any](store MembershipStore, channelID func(A) uint) Pipeline[A] {
	return Chain(
		Authenticated[A](),
		TeamAccess(store, channelID),
		ChannelAccess(store, channelID),
	)
}

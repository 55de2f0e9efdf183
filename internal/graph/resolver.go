package graph

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
	"github.com/Skotchmaster/teamchat/internal/util"
)

// Resolver is the root of both Query and Mutation.
type Resolver struct {
	UserService    *service.UserService
	AuthService    *service.AuthService
	TeamService    *service.TeamService
	ChannelService *service.ChannelService
	MessageService *service.MessageService

	// Store backs the membership gates.
	Store permissions.MembershipStore
}

var errInvalidID = fmt.Errorf("%w: ids must be positive", service.ErrValidation)

// checkIDs rejects ids that cannot name a row before they are narrowed to uint.
func checkIDs(ids ...int32) error {
	for _, id := range ids {
		if id < 1 {
			return errInvalidID
		}
	}
	return nil
}

func viewerID(ctx context.Context) uint {
	id, _ := permissions.IdentityFrom(ctx)
	return id.ID
}

func authenticated[A any]() permissions.Pipeline[A] {
	return permissions.Chain(permissions.Authenticated[A]())
}

func channelMember[A any](store permissions.MembershipStore, channelID func(A) uint) permissions.Pipeline[A] {
	return permissions.ChannelReader(store, channelID)
}

func pageArgs(page, size *int32) (int, int) {
	p, s := 1, util.DefaultPageSize
	if page != nil {
		p = int(*page)
	}
	if size != nil {
		s = int(*size)
	}
	return p, s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

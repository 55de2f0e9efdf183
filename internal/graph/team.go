package graph

import (
	"context"

	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
)

type teamIDArgs struct {
	TeamID int32
}

func (r *Resolver) GetTeamMembers(ctx context.Context, args teamIDArgs) ([]*userResolver, error) {
	if err := checkIDs(args.TeamID); err != nil {
		return nil, publicError(ctx, "getTeamMembers", err)
	}

	gates := authenticated[teamIDArgs]().
		Then(permissions.TeamMember(r.Store, func(a teamIDArgs) uint { return uint(a.TeamID) }))

	users, err := permissions.Wrap(gates, func(ctx context.Context, a teamIDArgs) ([]*userResolver, error) {
		users, err := r.TeamService.TeamMembers(ctx, uint(a.TeamID))
		if err != nil {
			return nil, err
		}
		return r.newUsers(users), nil
	})(ctx, args)
	return users, publicError(ctx, "getTeamMembers", err)
}

type createTeamArgs struct {
	Name string
}

func (r *Resolver) CreateTeam(ctx context.Context, args createTeamArgs) (*createTeamResponse, error) {
	res, err := permissions.Wrap(authenticated[createTeamArgs](), func(ctx context.Context, a createTeamArgs) (*createTeamResponse, error) {
		return &createTeamResponse{r: r, res: r.TeamService.CreateTeam(ctx, viewerID(ctx), a.Name)}, nil
	})(ctx, args)
	return res, publicError(ctx, "createTeam", err)
}

type addTeamMemberArgs struct {
	Email  string
	TeamID int32
}

func (r *Resolver) AddTeamMember(ctx context.Context, args addTeamMemberArgs) (*voidResponse, error) {
	if err := checkIDs(args.TeamID); err != nil {
		return nil, publicError(ctx, "addTeamMember", err)
	}

	res, err := permissions.Wrap(authenticated[addTeamMemberArgs](), func(ctx context.Context, a addTeamMemberArgs) (*voidResponse, error) {
		return &voidResponse{res: r.TeamService.AddTeamMember(ctx, viewerID(ctx), a.Email, uint(a.TeamID))}, nil
	})(ctx, args)
	return res, publicError(ctx, "addTeamMember", err)
}

type createChannelArgs struct {
	TeamID  int32
	Name    string
	Public  *bool
	Members *[]int32
}

func (a createChannelArgs) input() service.CreateChannelInput {
	in := service.CreateChannelInput{TeamID: uint(a.TeamID), Name: a.Name, Public: true}
	if a.Public != nil {
		in.Public = *a.Public
	}
	if a.Members != nil {
		for _, id := range *a.Members {
			in.Members = append(in.Members, uint(id))
		}
	}
	return in
}

func (a createChannelArgs) ids() []int32 {
	ids := []int32{a.TeamID}
	if a.Members != nil {
		ids = append(ids, *a.Members...)
	}
	return ids
}

func (r *Resolver) CreateChannel(ctx context.Context, args createChannelArgs) (*channelResponse, error) {
	if err := checkIDs(args.ids()...); err != nil {
		return nil, publicError(ctx, "createChannel", err)
	}

	res, err := permissions.Wrap(authenticated[createChannelArgs](), func(ctx context.Context, a createChannelArgs) (*channelResponse, error) {
		return &channelResponse{res: r.ChannelService.CreateChannel(ctx, viewerID(ctx), a.input())}, nil
	})(ctx, args)
	return res, publicError(ctx, "createChannel", err)
}

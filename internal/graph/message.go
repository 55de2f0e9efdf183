package graph

import (
	"context"

	"github.com/Skotchmaster/teamchat/internal/permissions"
)

type messagesArgs struct {
	ChannelID int32
	Page      *int32
	Size      *int32
}

func (r *Resolver) Messages(ctx context.Context, args messagesArgs) ([]*messageResolver, error) {
	if err := checkIDs(args.ChannelID); err != nil {
		return nil, publicError(ctx, "messages", err)
	}

	gates := channelMember(r.Store, func(a messagesArgs) uint { return uint(a.ChannelID) })

	msgs, err := permissions.Wrap(gates, func(ctx context.Context, a messagesArgs) ([]*messageResolver, error) {
		page, size := pageArgs(a.Page, a.Size)
		msgs, err := r.MessageService.Messages(ctx, uint(a.ChannelID), page, size)
		if err != nil {
			return nil, err
		}
		return r.withAuthors(ctx, msgs)
	})(ctx, args)
	return msgs, publicError(ctx, "messages", err)
}

type createMessageArgs struct {
	ChannelID int32
	Text      string
}

func (r *Resolver) CreateMessage(ctx context.Context, args createMessageArgs) (bool, error) {
	if err := checkIDs(args.ChannelID); err != nil {
		return false, publicError(ctx, "createMessage", err)
	}

	gates := channelMember(r.Store, func(a createMessageArgs) uint { return uint(a.ChannelID) })

	ok, err := permissions.Wrap(gates, func(ctx context.Context, a createMessageArgs) (bool, error) {
		if _, err := r.MessageService.CreateMessage(ctx, viewerID(ctx), uint(a.ChannelID), a.Text); err != nil {
			return false, err
		}
		return true, nil
	})(ctx, args)
	return ok, publicError(ctx, "createMessage", err)
}

type directMessagesArgs struct {
	TeamID      int32
	OtherUserID int32
	Page        *int32
	Size        *int32
}

func (r *Resolver) DirectMessages(ctx context.Context, args directMessagesArgs) ([]*directMessageResolver, error) {
	if err := checkIDs(args.TeamID, args.OtherUserID); err != nil {
		return nil, publicError(ctx, "directMessages", err)
	}

	gates := authenticated[directMessagesArgs]().Then(permissions.DirectMessageAccess(r.Store,
		func(a directMessagesArgs) uint { return uint(a.TeamID) },
		func(a directMessagesArgs) uint { return uint(a.OtherUserID) },
	))

	dms, err := permissions.Wrap(gates, func(ctx context.Context, a directMessagesArgs) ([]*directMessageResolver, error) {
		page, size := pageArgs(a.Page, a.Size)
		dms, err := r.MessageService.DirectMessages(ctx, uint(a.TeamID), viewerID(ctx), uint(a.OtherUserID), page, size)
		if err != nil {
			return nil, err
		}
		out := make([]*directMessageResolver, 0, len(dms))
		for i := range dms {
			out = append(out, &directMessageResolver{r: r, dm: dms[i]})
		}
		return out, nil
	})(ctx, args)
	return dms, publicError(ctx, "directMessages", err)
}

type createDirectMessageArgs struct {
	TeamID     int32
	ReceiverID int32
	Text       string
}

func (r *Resolver) CreateDirectMessage(ctx context.Context, args createDirectMessageArgs) (bool, error) {
	if err := checkIDs(args.TeamID, args.ReceiverID); err != nil {
		return false, publicError(ctx, "createDirectMessage", err)
	}

	gates := authenticated[createDirectMessageArgs]().Then(permissions.DirectMessageAccess(r.Store,
		func(a createDirectMessageArgs) uint { return uint(a.TeamID) },
		func(a createDirectMessageArgs) uint { return uint(a.ReceiverID) },
	))

	ok, err := permissions.Wrap(gates, func(ctx context.Context, a createDirectMessageArgs) (bool, error) {
		if _, err := r.MessageService.CreateDirectMessage(ctx, viewerID(ctx), uint(a.ReceiverID), uint(a.TeamID), a.Text); err != nil {
			return false, err
		}
		return true, nil
	})(ctx, args)
	return ok, publicError(ctx, "createDirectMessage", err)
}

type searchMessagesArgs struct {
	ChannelID int32
	Query     string
	Page      *int32
	Size      *int32
}

func (r *Resolver) SearchMessages(ctx context.Context, args searchMessagesArgs) (*searchResponse, error) {
	if err := checkIDs(args.ChannelID); err != nil {
		return nil, publicError(ctx, "searchMessages", err)
	}

	gates := channelMember(r.Store, func(a searchMessagesArgs) uint { return uint(a.ChannelID) })

	res, err := permissions.Wrap(gates, func(ctx context.Context, a searchMessagesArgs) (*searchResponse, error) {
		page, size := pageArgs(a.Page, a.Size)
		found, err := r.MessageService.Search(ctx, uint(a.ChannelID), a.Query, page, size)
		if err != nil {
			return nil, err
		}
		msgs, err := r.withAuthors(ctx, found.Messages)
		if err != nil {
			return nil, err
		}
		return &searchResponse{total: found.Total, messages: msgs}, nil
	})(ctx, args)
	return res, publicError(ctx, "searchMessages", err)
}

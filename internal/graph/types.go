package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
)

type userResolver struct {
	r    *Resolver
	user models.User
}

func (r *Resolver) newUser(u *models.User) *userResolver {
	if u == nil {
		return nil
	}
	return &userResolver{r: r, user: *u}
}

func (r *Resolver) newUsers(users []models.User) []*userResolver {
	out := make([]*userResolver, 0, len(users))
	for i := range users {
		out = append(out, &userResolver{r: r, user: users[i]})
	}
	return out
}

func (u *userResolver) ID() int32            { return int32(u.user.ID) }
func (u *userResolver) UUID() string         { return u.user.UUID }
func (u *userResolver) Username() string     { return u.user.Username }
func (u *userResolver) Email() string        { return u.user.Email }
func (u *userResolver) FirstName() *string   { return optional(u.user.FirstName) }
func (u *userResolver) LastName() *string    { return optional(u.user.LastName) }
func (u *userResolver) PhoneNumber() *string { return optional(u.user.PhoneNumber) }

// Teams lists memberships of the viewer only; other users report none.
func (u *userResolver) Teams(ctx context.Context) ([]*teamResolver, error) {
	if me := viewerID(ctx); me == 0 || me != u.user.ID {
		return []*teamResolver{}, nil
	}
	teams, err := u.r.UserService.Teams(ctx, u.user.ID)
	if err != nil {
		return nil, publicError(ctx, "User.teams", err)
	}
	out := make([]*teamResolver, 0, len(teams))
	for i := range teams {
		out = append(out, &teamResolver{r: u.r, team: teams[i]})
	}
	return out, nil
}

type teamResolver struct {
	r    *Resolver
	team models.Team
}

func (t *teamResolver) checkMember(ctx context.Context) error {
	gates := authenticated[uint]().Then(permissions.TeamMember(t.r.Store, func(teamID uint) uint { return teamID }))
	return gates.Check(ctx, t.team.ID)
}

func (t *teamResolver) ID() int32    { return int32(t.team.ID) }
func (t *teamResolver) UUID() string { return t.team.UUID }
func (t *teamResolver) Name() string { return t.team.Name }
func (t *teamResolver) Owner() int32 { return int32(t.team.Owner) }

// Admin reports whether the viewer administers the team.
func (t *teamResolver) Admin(ctx context.Context) (bool, error) {
	me := viewerID(ctx)
	if me == 0 {
		return false, nil
	}
	admin, err := t.r.TeamService.IsAdmin(ctx, t.team.ID, me)
	if err != nil {
		return false, publicError(ctx, "Team.admin", err)
	}
	return admin, nil
}

func (t *teamResolver) Channels(ctx context.Context) ([]*channelResolver, error) {
	if err := t.checkMember(ctx); err != nil {
		return nil, publicError(ctx, "Team.channels", err)
	}
	chs, err := t.r.TeamService.Channels(ctx, t.team.ID, viewerID(ctx))
	if err != nil {
		return nil, publicError(ctx, "Team.channels", err)
	}
	out := make([]*channelResolver, 0, len(chs))
	for i := range chs {
		out = append(out, &channelResolver{ch: chs[i]})
	}
	return out, nil
}

func (t *teamResolver) TeamMembers(ctx context.Context) ([]*userResolver, error) {
	if err := t.checkMember(ctx); err != nil {
		return nil, publicError(ctx, "Team.teamMembers", err)
	}
	users, err := t.r.TeamService.TeamMembers(ctx, t.team.ID)
	if err != nil {
		return nil, publicError(ctx, "Team.teamMembers", err)
	}
	return t.r.newUsers(users), nil
}

func (t *teamResolver) DirectMessageMembers(ctx context.Context) ([]*userResolver, error) {
	me := viewerID(ctx)
	if me == 0 {
		return []*userResolver{}, nil
	}
	users, err := t.r.TeamService.DirectMessageMembers(ctx, t.team.ID, me)
	if err != nil {
		return nil, publicError(ctx, "Team.directMessageMembers", err)
	}
	return t.r.newUsers(users), nil
}

type channelResolver struct {
	ch models.Channel
}

func newChannel(ch *models.Channel) *channelResolver {
	if ch == nil {
		return nil
	}
	return &channelResolver{ch: *ch}
}

func (c *channelResolver) ID() int32     { return int32(c.ch.ID) }
func (c *channelResolver) UUID() string  { return c.ch.UUID }
func (c *channelResolver) Name() string  { return c.ch.Name }
func (c *channelResolver) Public() bool  { return c.ch.Public }
func (c *channelResolver) TeamID() int32 { return int32(c.ch.TeamID) }

// messageResolver carries the author when the list query preloaded it.
type messageResolver struct {
	r      *Resolver
	msg    models.Message
	author *models.User
}

func (m *messageResolver) ID() int32         { return int32(m.msg.ID) }
func (m *messageResolver) Text() string      { return m.msg.Text }
func (m *messageResolver) CreatedAt() string { return m.msg.CreatedAt.UTC().Format(time.RFC3339) }

func (m *messageResolver) User(ctx context.Context) (*userResolver, error) {
	if m.author != nil {
		return m.r.newUser(m.author), nil
	}
	return m.r.loadUser(ctx, "Message.user", m.msg.UserID)
}

func (m *messageResolver) Channel(ctx context.Context) (*channelResolver, error) {
	ch, err := m.r.ChannelService.Channel(ctx, m.msg.ChannelID)
	if err == nil && ch == nil {
		err = fmt.Errorf("channel %d of message %d is missing", m.msg.ChannelID, m.msg.ID)
	}
	if err != nil {
		return nil, publicError(ctx, "Message.channel", err)
	}
	return newChannel(ch), nil
}

// withAuthors wraps msgs, loading all their authors in one query.
func (r *Resolver) withAuthors(ctx context.Context, msgs []models.Message) ([]*messageResolver, error) {
	ids := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.UserID)
	}
	users, err := r.UserService.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*messageResolver, 0, len(msgs))
	for i := range msgs {
		mr := &messageResolver{r: r, msg: msgs[i]}
		if u, ok := users[msgs[i].UserID]; ok {
			mr.author = &u
		}
		out = append(out, mr)
	}
	return out, nil
}

type directMessageResolver struct {
	r  *Resolver
	dm models.DirectMessage
}

func (d *directMessageResolver) ID() int32         { return int32(d.dm.ID) }
func (d *directMessageResolver) Text() string      { return d.dm.Text }
func (d *directMessageResolver) SenderID() int32   { return int32(d.dm.SenderID) }
func (d *directMessageResolver) ReceiverID() int32 { return int32(d.dm.ReceiverID) }
func (d *directMessageResolver) CreatedAt() string { return d.dm.CreatedAt.UTC().Format(time.RFC3339) }

func (d *directMessageResolver) Sender(ctx context.Context) (*userResolver, error) {
	return d.r.loadUser(ctx, "DirectMessage.sender", d.dm.SenderID)
}

func (r *Resolver) loadUser(ctx context.Context, op string, id uint) (*userResolver, error) {
	u, err := r.UserService.User(ctx, id)
	if err == nil && u == nil {
		err = fmt.Errorf("user %d is missing", id)
	}
	if err != nil {
		return nil, publicError(ctx, op, err)
	}
	return r.newUser(u), nil
}

type errorResolver struct {
	fe service.FieldError
}

func (e *errorResolver) Path() string    { return e.fe.Path }
func (e *errorResolver) Message() string { return e.fe.Message }

func fieldErrors(errs []service.FieldError) *[]*errorResolver {
	if len(errs) == 0 {
		return nil
	}
	out := make([]*errorResolver, 0, len(errs))
	for _, fe := range errs {
		out = append(out, &errorResolver{fe: fe})
	}
	return &out
}

type userResponse struct {
	ok     bool
	user   *userResolver
	errors []service.FieldError
}

func (p *userResponse) OK() bool                  { return p.ok }
func (p *userResponse) User() *userResolver       { return p.user }
func (p *userResponse) Errors() *[]*errorResolver { return fieldErrors(p.errors) }

type loginResponse struct {
	r   *Resolver
	res service.LoginResult
}

func (p *loginResponse) OK() bool                  { return p.res.OK }
func (p *loginResponse) User() *userResolver       { return p.r.newUser(p.res.User) }
func (p *loginResponse) TeamUUID() *string         { return optional(p.res.TeamUUID) }
func (p *loginResponse) ChannelUUID() *string      { return optional(p.res.ChannelUUID) }
func (p *loginResponse) Token() *string            { return optional(p.res.Token) }
func (p *loginResponse) RefreshToken() *string     { return optional(p.res.RefreshToken) }
func (p *loginResponse) Errors() *[]*errorResolver { return fieldErrors(p.res.Errors) }

type refreshResponse struct {
	r   *Resolver
	res service.RefreshResult
}

func (p *refreshResponse) OK() bool              { return p.res.OK() }
func (p *refreshResponse) Token() *string        { return optional(p.res.Token) }
func (p *refreshResponse) RefreshToken() *string { return optional(p.res.RefreshToken) }
func (p *refreshResponse) User() *userResolver   { return p.r.newUser(p.res.User) }

type voidResponse struct {
	res service.Result
}

func (p *voidResponse) OK() bool                  { return p.res.OK }
func (p *voidResponse) Errors() *[]*errorResolver { return fieldErrors(p.res.Errors) }

type createTeamResponse struct {
	r   *Resolver
	res service.CreateTeamResult
}

func (p *createTeamResponse) OK() bool { return p.res.OK }

func (p *createTeamResponse) Team() *teamResolver {
	if p.res.Team == nil {
		return nil
	}
	return &teamResolver{r: p.r, team: *p.res.Team}
}

func (p *createTeamResponse) ChannelUUID() *string      { return optional(p.res.ChannelUUID) }
func (p *createTeamResponse) Errors() *[]*errorResolver { return fieldErrors(p.res.Errors) }

type channelResponse struct {
	res service.CreateChannelResult
}

func (p *channelResponse) OK() bool                  { return p.res.OK }
func (p *channelResponse) Channel() *channelResolver { return newChannel(p.res.Channel) }
func (p *channelResponse) Errors() *[]*errorResolver { return fieldErrors(p.res.Errors) }

type searchResponse struct {
	total    int64
	messages []*messageResolver
}

func (p *searchResponse) Total() int32                 { return int32(p.total) }
func (p *searchResponse) Messages() []*messageResolver { return p.messages }

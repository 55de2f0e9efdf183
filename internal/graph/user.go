package graph

import (
	"context"

	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
)

type noArgs struct{}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	me, err := permissions.Wrap(authenticated[noArgs](), func(ctx context.Context, _ noArgs) (*userResolver, error) {
		u, err := r.UserService.User(ctx, viewerID(ctx))
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, permissions.ErrNotAuthenticated
		}
		return r.newUser(u), nil
	})(ctx, noArgs{})
	return me, publicError(ctx, "me", err)
}

func (r *Resolver) AllUsers(ctx context.Context) ([]*userResolver, error) {
	users, err := permissions.Wrap(authenticated[noArgs](), func(ctx context.Context, _ noArgs) ([]*userResolver, error) {
		users, err := r.UserService.Users(ctx)
		if err != nil {
			return nil, err
		}
		return r.newUsers(users), nil
	})(ctx, noArgs{})
	return users, publicError(ctx, "allUsers", err)
}

type getUserArgs struct {
	UserID int32
}

func (r *Resolver) GetUser(ctx context.Context, args getUserArgs) (*userResolver, error) {
	if err := checkIDs(args.UserID); err != nil {
		return nil, publicError(ctx, "getUser", err)
	}

	u, err := permissions.Wrap(authenticated[getUserArgs](), func(ctx context.Context, a getUserArgs) (*userResolver, error) {
		u, err := r.UserService.User(ctx, uint(a.UserID))
		if err != nil {
			return nil, err
		}
		return r.newUser(u), nil
	})(ctx, args)
	return u, publicError(ctx, "getUser", err)
}

type getUserByNameArgs struct {
	Username string
}

func (r *Resolver) GetUserByName(ctx context.Context, args getUserByNameArgs) (*userResolver, error) {
	u, err := permissions.Wrap(authenticated[getUserByNameArgs](), func(ctx context.Context, a getUserByNameArgs) (*userResolver, error) {
		u, err := r.UserService.UserByUsername(ctx, a.Username)
		if err != nil {
			return nil, err
		}
		return r.newUser(u), nil
	})(ctx, args)
	return u, publicError(ctx, "getUserByName", err)
}

type verifyUserArgs struct {
	Username *string
}

func (r *Resolver) VerifyUser(ctx context.Context, args verifyUserArgs) bool {
	if args.Username == nil || *args.Username == "" {
		return false
	}
	return r.UserService.UsernameTaken(ctx, *args.Username)
}

type verifyEmailArgs struct {
	Email *string
}

func (r *Resolver) VerifyEmail(ctx context.Context, args verifyEmailArgs) bool {
	if args.Email == nil || *args.Email == "" {
		return false
	}
	return r.UserService.EmailTaken(ctx, *args.Email)
}

type registerArgs struct {
	Username    string
	Email       string
	Password    string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

func (r *Resolver) Register(ctx context.Context, args registerArgs) *userResponse {
	res := r.UserService.Register(ctx, service.RegisterInput{
		Username:    args.Username,
		Email:       args.Email,
		Password:    args.Password,
		FirstName:   deref(args.FirstName),
		LastName:    deref(args.LastName),
		PhoneNumber: deref(args.PhoneNumber),
	})
	return &userResponse{ok: res.OK, user: r.newUser(res.User), errors: res.Errors}
}

type loginArgs struct {
	Email    string
	Password string
}

func (r *Resolver) Login(ctx context.Context, args loginArgs) *loginResponse {
	return &loginResponse{r: r, res: r.AuthService.Login(ctx, args.Email, args.Password)}
}

type refreshTokensArgs struct {
	Token        *string
	RefreshToken string
}

func (r *Resolver) RefreshTokens(ctx context.Context, args refreshTokensArgs) *refreshResponse {
	return &refreshResponse{r: r, res: r.AuthService.Refresh(ctx, deref(args.Token), args.RefreshToken)}
}

type updateProfileArgs struct {
	ID          int32
	Username    string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

func (r *Resolver) UpdateProfile(ctx context.Context, args updateProfileArgs) (*userResponse, error) {
	if err := checkIDs(args.ID); err != nil {
		return nil, publicError(ctx, "updateProfile", err)
	}

	res, err := permissions.Wrap(authenticated[updateProfileArgs](), func(ctx context.Context, a updateProfileArgs) (*userResponse, error) {
		res := r.UserService.UpdateProfile(ctx, viewerID(ctx), service.ProfileInput{
			ID:          uint(a.ID),
			Username:    a.Username,
			FirstName:   deref(a.FirstName),
			LastName:    deref(a.LastName),
			PhoneNumber: deref(a.PhoneNumber),
		})
		return &userResponse{ok: res.OK, user: r.newUser(res.User), errors: res.Errors}, nil
	})(ctx, args)
	return res, publicError(ctx, "updateProfile", err)
}

type changePasswordArgs struct {
	CurrentPassword string
	NewPassword     string
}

func (r *Resolver) ChangePassword(ctx context.Context, args changePasswordArgs) (*voidResponse, error) {
	res, err := permissions.Wrap(authenticated[changePasswordArgs](), func(ctx context.Context, a changePasswordArgs) (*voidResponse, error) {
		return &voidResponse{res: r.UserService.ChangePassword(ctx, viewerID(ctx), a.CurrentPassword, a.NewPassword)}, nil
	})(ctx, args)
	return res, publicError(ctx, "changePassword", err)
}

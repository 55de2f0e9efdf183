package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Skotchmaster/teamchat/internal/hash"
	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/repo"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type RegisterInput struct {
	Username    string `json:"username" validate:"required,alphanum,min=3,max=25"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=5,max=100"`
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

type ProfileInput struct {
	ID          uint   `json:"id"`
	Username    string `json:"username" validate:"required,alphanum,min=3,max=25"`
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

type passwordInput struct {
	Password string `json:"newPassword" validate:"required,min=5,max=100"`
}

type UserResult struct {
	OK     bool
	User   *models.User
	Errors []FieldError
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "The " + fe.Field() + " is required"
	case "email":
		return "Invalid email"
	case "alphanum":
		return "The " + fe.Field() + " can only contain letters and numbers"
	case "min", "max":
		if fe.Field() == "username" {
			return "The username needs to be between 3 and 25 characters long"
		}
		if strings.Contains(strings.ToLower(fe.Field()), "password") {
			return "The password needs to be between 5 and 100 characters long"
		}
		return "The " + fe.Field() + " is too long"
	}
	return "The " + fe.Field() + " is invalid"
}

// fieldErrors turns validator failures into payload errors; ok is false for
// any other error.
func fieldErrors(err error) ([]FieldError, bool) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil, false
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Path: fe.Field(), Message: validationMessage(fe)})
	}
	return out, true
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) UserResult {
	l := logging.FromContext(ctx).With("svc", "user.register")

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		if errs, ok := fieldErrors(err); ok {
			l.Warn("register_error", "status", 422, "reason", "validation")
			return UserResult{Errors: errs}
		}
		l.Error("register_error", "status", 500, "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	var errs []FieldError
	if taken, err := s.Repo.UsernameTaken(ctx, in.Username, 0); err != nil {
		l.Error("register_error", "status", 500, "reason", "username lookup", "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	} else if taken {
		errs = append(errs, FieldError{Path: "username", Message: "username must be unique"})
	}
	if taken, err := s.Repo.EmailTaken(ctx, in.Email); err != nil {
		l.Error("register_error", "status", 500, "reason", "email lookup", "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	} else if taken {
		errs = append(errs, FieldError{Path: "email", Message: "email must be unique"})
	}
	if len(errs) > 0 {
		l.Warn("register_error", "status", 409, "reason", "user already exist")
		return UserResult{Errors: errs}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	user := &models.User{
		UUID:         uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return UserResult{Errors: fail("email", "email must be unique")}
		}
		l.Error("register_error", "status", 500, "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	l.Info("register_successful", "user_id", user.ID)
	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, "user_registered", map[string]any{
		"user_id":  user.ID,
		"uuid":     user.UUID,
		"username": user.Username,
	})
	return UserResult{OK: true, User: user}
}

// UpdateProfile only lets callers change their own record.
func (s *UserService) UpdateProfile(ctx context.Context, viewerID uint, in ProfileInput) UserResult {
	l := logging.FromContext(ctx).With("svc", "user.update_profile", "user_id", viewerID)

	if in.ID != viewerID {
		l.Warn("update_profile_denied", "status", 403, "target_id", in.ID)
		return UserResult{Errors: fail("id", MsgNotOwnProfile)}
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		if errs, ok := fieldErrors(err); ok {
			return UserResult{Errors: errs}
		}
		l.Error("update_profile_error", "status", 500, "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	taken, err := s.Repo.UsernameTaken(ctx, in.Username, viewerID)
	if err != nil {
		l.Error("update_profile_error", "status", 500, "reason", "username lookup", "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}
	if taken {
		return UserResult{Errors: fail("username", "username must be unique")}
	}

	if err := s.Repo.UpdateProfile(ctx, viewerID, repo.ProfileUpdate{
		Username:    in.Username,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
	}); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return UserResult{Errors: fail("username", "username must be unique")}
		}
		l.Error("update_profile_error", "status", 500, "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}

	user, err := s.Repo.UserByID(ctx, viewerID)
	if err != nil {
		l.Error("update_profile_error", "status", 500, "reason", "reload", "error", err)
		return UserResult{Errors: fail("", MsgSomethingWentWrong)}
	}
	return UserResult{OK: true, User: user}
}

// ChangePassword rehashes the password. Refresh tokens signed with the old
// hash stop verifying.
func (s *UserService) ChangePassword(ctx context.Context, viewerID uint, current, next string) Result {
	l := logging.FromContext(ctx).With("svc", "user.change_password", "user_id", viewerID)

	user, err := s.Repo.UserByID(ctx, viewerID)
	if err != nil {
		l.Error("change_password_error", "status", 500, "error", err)
		return Result{Errors: fail("", MsgSomethingWentWrong)}
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		l.Warn("change_password_denied", "status", 401)
		return Result{Errors: fail("currentPassword", MsgWrongCurrentPassword)}
	}
	if err := validate.Struct(passwordInput{Password: next}); err != nil {
		if errs, ok := fieldErrors(err); ok {
			return Result{Errors: errs}
		}
		return Result{Errors: fail("", MsgSomethingWentWrong)}
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		l.Error("change_password_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return Result{Errors: fail("", MsgSomethingWentWrong)}
	}
	if err := s.Repo.UpdatePasswordHash(ctx, viewerID, pwHash); err != nil {
		l.Error("change_password_error", "status", 500, "error", err)
		return Result{Errors: fail("", MsgSomethingWentWrong)}
	}

	l.Info("password_changed")
	return Result{OK: true}
}

// User returns nil without an error when the user does not exist.
func (s *UserService) User(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.UserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *UserService) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Repo.UserByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// UsersByIDs loads several users at once, keyed by id.
func (s *UserService) UsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	return s.Repo.UsersByIDs(ctx, ids)
}

func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	return s.Repo.Users(ctx)
}

func (s *UserService) Teams(ctx context.Context, userID uint) ([]models.Team, error) {
	return s.Repo.TeamsForUser(ctx, userID)
}

// UsernameTaken reports false when the lookup fails.
func (s *UserService) UsernameTaken(ctx context.Context, username string) bool {
	taken, err := s.Repo.UsernameTaken(ctx, username, 0)
	if err != nil {
		logging.FromContext(ctx).Error("verify_user_failed", "error", err)
		return false
	}
	return taken
}

func (s *UserService) EmailTaken(ctx context.Context, email string) bool {
	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		logging.FromContext(ctx).Error("verify_email_failed", "error", err)
		return false
	}
	return taken
}

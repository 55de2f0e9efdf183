package service

import (
	"errors"
	"fmt"
)

const (
	MsgInvalidLogin           = "Invalid email or password."
	MsgSomethingWentWrong     = "Something went wrong. Please try again."
	MsgDefaultTeamUnavailable = "Could not load default team."
	MsgTeamNameExists         = "Team name already exists."
	MsgTeamNameRequired       = "Team name is required."
	MsgNotChannelOwner        = "You have to be the owner of the team to create channels"
	MsgCannotAddMembers       = "You cannot add members to the team"
	MsgUnknownEmail           = "Could not find user with this email"
	MsgAlreadyMember          = "User is already a member of this team"
	MsgChannelNameRequired    = "Channel name is required."
	MsgChannelMembersOutside  = "All channel members have to belong to the team."
	MsgNotOwnProfile          = "You can only update your own profile"
	MsgWrongCurrentPassword   = "Current password is incorrect."
)

var (
	ErrValidation     = errors.New("validation error")
	ErrSearchDisabled = errors.New("message search is not configured")
)

// FieldError is a recoverable business failure reported in a payload
// instead of being raised to the transport.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the payload of operations that only report success.
type Result struct {
	OK     bool
	Errors []FieldError
}

func fail(path, message string) []FieldError {
	return []FieldError{{Path: path, Message: message}}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

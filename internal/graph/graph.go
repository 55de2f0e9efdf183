package graph

import (
	"context"
	_ "embed"
	"errors"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 12

var errInternal = errors.New("internal server error")

// NewSchema parses the SDL against r. It fails when a resolver method does
// not match the schema.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{}),
	)
}

type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	logging.FromContext(ctx).Error("graphql_panic", "panic", value)
}

// publicError decides what a client sees for err. Gate denials and input
// errors keep their message; anything else is logged and replaced.
func publicError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	l := logging.FromContext(ctx)
	switch {
	case permissions.IsDenied(err):
		l.Warn("permission_denied", "status", 403, "op", op, "reason", err.Error())
		return err
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrSearchDisabled):
		return err
	}
	l.Error("resolver_failed", "status", 500, "op", op, "error", err)
	return errInternal
}

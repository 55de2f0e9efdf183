package httpserver

import (
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/realtime"
)

type Deps struct {
	DB     *gorm.DB
	Schema *graphql.Schema
	Hub    *realtime.Hub
	Store  permissions.MembershipStore

	// AllowedOrigins limits websocket upgrades; "*" allows any origin.
	AllowedOrigins []string
}

func Register(e *echo.Echo, d *Deps) {
	health := &HealthHandler{DB: d.DB}
	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)

	gql := &GraphQLHandler{Schema: d.Schema}
	e.POST("/graphql", gql.Serve)
	e.GET("/graphql", gql.Serve)

	feed := NewChannelFeedHandler(d.Hub, d.Store, d.AllowedOrigins)
	e.GET("/ws/channels/:channelId", feed.Serve)
}

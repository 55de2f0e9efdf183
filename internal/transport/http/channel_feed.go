package httpserver

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/realtime"
)

// ChannelFeedHandler streams new messages of one channel over a websocket.
type ChannelFeedHandler struct {
	Hub      *realtime.Hub
	Gate     permissions.Pipeline[uint]
	Upgrader websocket.Upgrader
}

func NewChannelFeedHandler(hub *realtime.Hub, store permissions.MembershipStore, origins []string) *ChannelFeedHandler {
	return &ChannelFeedHandler{
		Hub: hub,
		Gate: permissions.ChannelReader(store, func(channelID uint) uint { return channelID }),
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func (h *ChannelFeedHandler) Serve(c echo.Context) error {
	channelID, err := strconv.ParseUint(c.Param("channelId"), 10, 64)
	if err != nil || channelID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid channel id")
	}

	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("channel_id", channelID)

	if err := h.Gate.Check(ctx, uint(channelID)); err != nil {
		switch {
		case errors.Is(err, permissions.ErrNotAuthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case permissions.IsDenied(err):
			l.Warn("channel_feed_denied", "status", 403, "reason", err.Error())
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		l.Error("channel_feed_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied to the client.
		l.Warn("channel_feed_upgrade_failed", "error", err)
		return nil
	}

	me, _ := permissions.IdentityFrom(ctx)
	h.Hub.Serve(ctx, conn, uint(channelID), me.ID)
	return nil
}

package auth

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/permissions"
	"github.com/Skotchmaster/teamchat/internal/service"
	"github.com/Skotchmaster/teamchat/internal/tokens"
)

const (
	HeaderToken        = "x-token"
	HeaderRefreshToken = "x-refresh-token"
)

type Refresher interface {
	Refresh(ctx context.Context, accessToken, refreshToken string) service.RefreshResult
}

type TokenAuth struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewTokenAuth(secret []byte, refresher Refresher) *TokenAuth {
	return &TokenAuth{JWTSecret: secret, Refresher: refresher}
}

// Middleware resolves the caller from x-token, or from the token query
// parameter on websocket handshakes. An invalid or expired access
// token is replaced through x-refresh-token when possible and the new pair
// is returned in the response headers. Requests are never rejected here.
func (m *TokenAuth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		access := req.Header.Get(HeaderToken)
		if access == "" && websocket.IsWebSocketUpgrade(req) {
			access = c.QueryParam("token")
		}
		if access == "" {
			return next(c)
		}

		if claims, err := tokens.Parse(access, m.JWTSecret); err == nil {
			setIdentity(c, permissions.Identity{ID: claims.User.ID, Username: claims.User.Username})
			return next(c)
		}

		refresh := req.Header.Get(HeaderRefreshToken)
		if refresh == "" || m.Refresher == nil {
			return next(c)
		}

		res := m.Refresher.Refresh(req.Context(), access, refresh)
		if !res.OK() {
			logging.FromContext(req.Context()).Debug("token_refresh_skipped", "reason", "refresh rejected")
			return next(c)
		}

		h := c.Response().Header()
		h.Set("Access-Control-Expose-Headers", HeaderToken+", "+HeaderRefreshToken)
		h.Set(HeaderToken, res.Token)
		h.Set(HeaderRefreshToken, res.RefreshToken)

		setIdentity(c, permissions.Identity{ID: res.User.ID, Username: res.User.Username})
		return next(c)
	}
}

func setIdentity(c echo.Context, id permissions.Identity) {
	ctx := permissions.WithIdentity(c.Request().Context(), id)
	ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", id.ID))
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("user_id", id.ID)
}

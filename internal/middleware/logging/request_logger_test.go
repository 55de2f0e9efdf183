package loggingmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Skotchmaster/teamchat/internal/logging"
)

func newServer(t *testing.T) (*echo.Echo, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(logging.FromZap(zap.New(core))))

	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})
	return e, logs
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	tests := []struct {
		path   string
		status int
		level  zapcore.Level
	}{
		{path: "/ok", status: http.StatusOK, level: zapcore.InfoLevel},
		{path: "/missing", status: http.StatusNotFound, level: zapcore.WarnLevel},
		{path: "/boom", status: http.StatusInternalServerError, level: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, logs := newServer(t)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(echo.HeaderXRequestID, "rid-1")
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

			done := logs.FilterMessage("request completed").All()
			require.Len(t, done, 1)
			assert.Equal(t, tt.level, done[0].Level)
			fields := done[0].ContextMap()
			assert.EqualValues(t, tt.status, fields["status"])
			assert.Equal(t, "rid-1", fields["request_id"])
			assert.Equal(t, tt.path, fields["path"])
		})
	}
}

func TestRequestLogger_HandlerSeesRequestLogger(t *testing.T) {
	e, logs := newServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	inside := logs.FilterMessage("inside_handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "/ok", inside[0].ContextMap()["url"])
}

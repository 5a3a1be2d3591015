package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/easypay/pkg/logctx"
)

func newRouter(log *zap.SugaredLogger, status int) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seenTrace string
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(log), AccessLogMiddleware())
	r.POST("/transaction_notify", func(c *gin.Context) {
		seenTrace = logctx.TraceID(c.Request.Context())
		logctx.FromGin(c, log).Infow("handled")
		c.String(status, "done")
	})
	return r, &seenTrace
}

func TestMiddleware_PropagatesTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r, seen := newRouter(zap.New(core).Sugar(), http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/transaction_notify", nil)
	req.Header.Set(HeaderRequestID, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "trace-1", *seen)
	require.Equal(t, "trace-1", w.Header().Get(HeaderRequestID))

	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)
	require.Equal(t, "trace-1", entries[0].ContextMap()["trace_id"])
	require.Equal(t, "/transaction_notify", entries[0].ContextMap()["route"])
	require.Len(t, logs.FilterMessage("http_access").All(), 1)
}

func TestMiddleware_GeneratesTraceIDAndWarnsOnRefusal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r, seen := newRouter(zap.New(core).Sugar(), http.StatusForbidden)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transaction_notify", nil))

	require.NotEmpty(t, *seen)
	require.Equal(t, *seen, w.Header().Get(HeaderRequestID))

	access := logs.FilterMessage("http_access").All()
	require.Len(t, access, 1)
	require.Equal(t, zapcore.WarnLevel, access[0].Level)
}

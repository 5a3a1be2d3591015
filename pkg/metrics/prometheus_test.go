package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_ServesRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	p := NewPrometheus(NewPrometheusOptions{})
	p.Use(r)
	r.POST("/transaction_notify", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/api/v1/payments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/transaction_notify", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/payments/abc-123", nil),
		httptest.NewRequest(http.MethodGet, "/wp-login.php", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `req_total{code="200",method="POST",url="/transaction_notify"}`)
	require.Contains(t, body, `req_total{code="200",method="GET",url="/api/v1/payments/:id"}`)
	require.Contains(t, body, `req_total{code="404",method="GET",url="unmatched"}`)
	require.NotContains(t, body, "abc-123")

	// registering twice reuses the collectors
	require.NotPanics(t, func() { NewPrometheus(NewPrometheusOptions{}) })
}

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notify", nil)
	req.Header.Set("X-Easypay-Code", "abc")
	base := computeApproximateRequestSize(req)
	require.Greater(t, base, len("/notify"))

	req.ContentLength = 100
	require.Equal(t, base+100, computeApproximateRequestSize(req))
}

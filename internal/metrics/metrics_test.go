package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthEvent("login", OutcomeSuccess)
	m.AuthEvent("login", OutcomeFailure)
	m.AuthEvent("login", OutcomeFailure)

	if got := testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeFailure)); got != 2 {
		t.Errorf("login failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeSuccess)); got != 1 {
		t.Errorf("login successes = %v, want 1", got)
	}
}

func TestRateLimited(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RateLimited("signup")

	if got := testutil.ToFloat64(m.rateLimited.WithLabelValues("signup")); got != 1 {
		t.Errorf("signup rejections = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.AuthEvent("login", OutcomeSuccess)
	m.RateLimited("login")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestMiddleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/users/1", "/api/users/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/users/:id", "200")); got != 2 {
		t.Errorf("route requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

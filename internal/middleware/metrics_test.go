package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/byebilly/waitlist-api/internal/service"
)

func TestMetricsLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/waitlist/entries", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/waitlist/entries?page=2", "/nope/1", "/nope/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if n := counterValue(t, metrics, "http_requests_total", "path", "/waitlist/entries"); n != 1 {
		t.Fatalf("expected one routed request, got %v", n)
	}
	if n := counterValue(t, metrics, "http_requests_total", "path", unmatchedRoute); n != 2 {
		t.Fatalf("expected unmatched requests to share a label, got %v", n)
	}
}

func TestSetCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	if _, ok := CacheHit(c); ok {
		t.Fatalf("cache hit must be unset initially")
	}
	SetCacheHit(c, true)
	if hit, ok := CacheHit(c); !ok || !hit {
		t.Fatalf("expected cache hit to be recorded")
	}
	if got := recorder.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("unexpected X-Cache header: %s", got)
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectorがMetricsCollectorインターフェースを満たすことを検証
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
}

// 記録したメトリクスが/metrics出力に現れることを検証
func TestCollector_RecordsAndExposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/articles", http.StatusOK)
	c.RecordHTTPDuration(http.MethodGet, "/articles", 25*time.Millisecond)
	c.RecordLoginAttempt(true)
	c.RecordLoginAttempt(false)
	c.RecordLikeToggle("article", true)
	c.RecordLikeToggle("product", false)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	wantLines := []string{
		`pandamarket_http_requests_total{method="GET",path="/articles",status_code="200"} 1`,
		`pandamarket_login_attempts_total{result="success"} 1`,
		`pandamarket_login_attempts_total{result="failure"} 1`,
		`pandamarket_like_toggles_total{resource="article",state="liked"} 1`,
		`pandamarket_like_toggles_total{resource="product",state="unliked"} 1`,
		`pandamarket_http_request_duration_seconds_count{method="GET",path="/articles"} 1`,
	}
	for _, want := range wantLines {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

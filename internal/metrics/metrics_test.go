package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(discountRedemptions.WithLabelValues("duplicate"))
	DiscountRedeemed("duplicate")
	if got := testutil.ToFloat64(discountRedemptions.WithLabelValues("duplicate")); got != before+1 {
		t.Fatalf("expected counter to increase, got %v", got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/health", 200, 5*time.Millisecond)
	ProviderFallback()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "buildlab_http_requests_total") {
		t.Fatalf("http metric missing")
	}
	if !strings.Contains(body, "buildlab_identity_provider_fallbacks_total") {
		t.Fatalf("fallback metric missing")
	}
}

package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/syfoh/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("syfohd", "GET", "/health", 200, 12*time.Millisecond)

	before := testutil.ToFloat64(commandsParsed.WithLabelValues("write", "ok"))
	RecordCommand("write", "ok")
	if got := testutil.ToFloat64(commandsParsed.WithLabelValues("write", "ok")); got != before+1 {
		t.Fatalf("expected command counter to advance, got %v want %v", got, before+1)
	}

	RecordFrameSent("hex", true)
	if got := testutil.ToFloat64(framesSent.WithLabelValues("hex", "true")); got < 1 {
		t.Fatalf("expected frame counter recorded, got %v", got)
	}
}

func TestRequestMetricsMiddlewareRecordsRoute(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestMetricsMiddleware("syfohd-test"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	got := testutil.ToFloat64(httpRequests.WithLabelValues("syfohd-test", "GET", "/ping", "204"))
	if got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
}

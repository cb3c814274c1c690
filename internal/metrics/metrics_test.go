package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Recorder(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveReload("critical", 20*time.Millisecond, nil)
	m.ObserveReload("background", 5*time.Millisecond, errors.New("timeout"))
	m.ObserveMutation("CreateVenue", time.Millisecond, nil)
	m.ObserveMutation("CreateVenue", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.reloadFailures.WithLabelValues("background")); got != 1 {
		t.Fatalf("expected 1 background failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.reloadFailures.WithLabelValues("critical")); got != 0 {
		t.Fatalf("expected no critical failures, got %v", got)
	}
	if got := testutil.CollectAndCount(m.mutationDuration); got != 2 {
		t.Fatalf("expected ok and error mutation series, got %d", got)
	}
}

func TestMetrics_ClientsAndJobs(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetClients(4)
	m.SetClients(3)
	if got := testutil.ToFloat64(m.wsClients); got != 3 {
		t.Fatalf("expected 3 clients, got %v", got)
	}

	m.ObserveJob("refresh", time.Second, nil)
	m.ObserveJob("refresh", time.Second, errors.New("backend down"))
	m.ObserveJob("report", time.Second, nil)
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("refresh", "error")); got != 1 {
		t.Fatalf("expected 1 failed refresh, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("report", "ok")); got != 1 {
		t.Fatalf("expected 1 report run, got %v", got)
	}
}

func TestMetrics_MiddlewareUsesRouteTemplates(t *testing.T) {
	t.Parallel()

	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/venues/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"v1", "v2", "v3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/venues/"+id, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/venues/{id}", http.MethodDelete, "204")); got != 3 {
		t.Fatalf("expected 3 requests on the route template, got %v", got)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `hacktown_http_requests_total{method="DELETE",route="/venues/{id}",status="204"} 3`) {
		t.Fatalf("expected exposition to include request counter, got:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("expected go runtime collector in exposition")
	}
}

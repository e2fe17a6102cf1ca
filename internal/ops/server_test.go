package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/internal/logger"
	"taskboard/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	s := New(logger.Nop(), nil)
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestServer_Readyz(t *testing.T) {
	checks := map[string]Check{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	rec := get(t, New(logger.Nop(), checks).Handler(), "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d", rec.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "not_ready" || body.Checks["database"] != "ok" || body.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestServer_Metrics(t *testing.T) {
	metrics.NotificationsTotal.WithLabelValues("scheduled").Inc()

	rec := get(t, New(logger.Nop(), nil).Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "taskboard_deadline_notifications_total") {
		t.Fatalf("metrics output misses notification counter")
	}
}

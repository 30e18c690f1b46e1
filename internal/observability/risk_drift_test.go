package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestReportRiskEscalations_PostsWebhookAboveThreshold(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode alert payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("RISK_DRIFT_ALERTS_ENABLED", "true")
	t.Setenv("RISK_DRIFT_ALERT_WEBHOOK_URL", srv.URL)

	ReportRiskEscalations(context.Background(), nil, "America/New_York", 8, 20, nil)

	select {
	case payload := <-received:
		if payload["title"] != "Risk drift detected" {
			t.Fatalf("alert title: want=%q got=%v", "Risk drift detected", payload["title"])
		}
		meta, ok := payload["meta"].(map[string]any)
		if !ok {
			t.Fatalf("alert meta: want map got %T", payload["meta"])
		}
		if meta["timezone"] != "America/New_York" {
			t.Fatalf("alert timezone: want=America/New_York got=%v", meta["timezone"])
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no alert posted")
	}
}

func TestReportRiskEscalations_IgnoresSmallOrCalmBatches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	t.Setenv("RISK_DRIFT_ALERTS_ENABLED", "true")
	t.Setenv("RISK_DRIFT_ALERT_WEBHOOK_URL", srv.URL)

	// Too few users to be meaningful.
	ReportRiskEscalations(context.Background(), nil, "UTC", 3, 4, nil)
	// Rate below the alert threshold.
	ReportRiskEscalations(context.Background(), nil, "UTC", 1, 20, nil)

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("alert posts: want=0 got=%d", n)
	}
}

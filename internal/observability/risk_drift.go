package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/attunelabs/attune-backend/internal/platform/ctxutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type RiskDriftMetric struct {
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Value     float64        `json:"value"`
	Threshold float64        `json:"threshold"`
	Meta      map[string]any `json:"meta,omitempty"`
}

type driftAlertState struct {
	mu   sync.Mutex
	last map[string]time.Time
}

var driftAlerts driftAlertState

// ReportRiskEscalations checks one batch's escalation rate against the
// configured threshold and raises a drift alert when the whole cohort is
// trending worse at once. Small batches are ignored so a two-user timezone
// cannot trip the alarm.
func ReportRiskEscalations(ctx context.Context, log *logger.Logger, timezone string, escalated, total int, meta map[string]any) {
	if total < riskDriftMinBatch() || escalated <= 0 {
		return
	}
	rate := float64(escalated) / float64(total)
	threshold := riskDriftEscalationRateThreshold()
	if rate < threshold {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["timezone"] = timezone
	meta["escalated"] = escalated
	meta["total"] = total
	ReportRiskDrift(ctx, log, []RiskDriftMetric{
		{
			Name:      "risk_escalation_rate",
			Status:    "breach",
			Value:     rate,
			Threshold: threshold,
		},
	}, meta)
}

func ReportRiskDrift(ctx context.Context, log *logger.Logger, metrics []RiskDriftMetric, meta map[string]any) {
	if len(metrics) == 0 {
		return
	}
	if !riskDriftAlertsEnabled() {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			meta["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			meta["request_id"] = td.RequestID
		}
	}

	webhook := riskDriftAlertWebhook()
	if webhook == "" {
		return
	}
	key := "risk_drift"
	driftAlerts.mu.Lock()
	if driftAlerts.last == nil {
		driftAlerts.last = map[string]time.Time{}
	}
	last := driftAlerts.last[key]
	minInterval := riskDriftAlertMinInterval()
	if !last.IsZero() && time.Since(last) < minInterval {
		driftAlerts.mu.Unlock()
		return
	}
	driftAlerts.last[key] = time.Now()
	driftAlerts.mu.Unlock()

	payload := map[string]any{
		"title":     "Risk drift detected",
		"metrics":   metrics,
		"meta":      meta,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		if log != nil {
			log.Warn("risk drift alert request build failed", "error", err)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		if log != nil {
			log.Warn("risk drift alert post failed", "error", err)
		}
		return
	}
	_ = resp.Body.Close()
	if log != nil {
		log.Info("risk drift alert sent", "status", resp.StatusCode)
	}
}

func riskDriftAlertsEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("RISK_DRIFT_ALERTS_ENABLED")))
	if v == "" {
		return false
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func riskDriftAlertWebhook() string {
	val := strings.TrimSpace(os.Getenv("RISK_DRIFT_ALERT_WEBHOOK_URL"))
	if val != "" {
		return val
	}
	return strings.TrimSpace(os.Getenv("SLO_ALERT_WEBHOOK_URL"))
}

func riskDriftAlertMinInterval() time.Duration {
	raw := strings.TrimSpace(os.Getenv("RISK_DRIFT_ALERT_MIN_INTERVAL_SECONDS"))
	if raw == "" {
		return 10 * time.Minute
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}

func riskDriftEscalationRateThreshold() float64 {
	raw := strings.TrimSpace(os.Getenv("RISK_DRIFT_ESCALATION_RATE_THRESHOLD"))
	if raw == "" {
		return 0.25
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0.25
	}
	return f
}

func riskDriftMinBatch() int {
	raw := strings.TrimSpace(os.Getenv("RISK_DRIFT_MIN_BATCH"))
	if raw == "" {
		return 10
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 10
	}
	return n
}

// Package alert flags plans whose aggregated metrics fall below configured
// thresholds and posts notifications to a webhook.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ignite/planner-ranker/internal/config"
	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/httpretry"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
)

// Severity classifies how far below threshold a metric has fallen.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert describes one plan metric that breached a threshold.
type Alert struct {
	PlanID    string   `json:"plan_id"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// payload is the webhook body.
type payload struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Alerts    []Alert   `json:"alerts"`
}

// Notifier evaluates thresholds and delivers alerts.
type Notifier struct {
	cfg    config.AlertsConfig
	client httpretry.Doer
	now    func() time.Time
}

// NewNotifier creates a Notifier. A nil client gets a retrying default.
func NewNotifier(cfg config.AlertsConfig, client httpretry.Doer) *Notifier {
	if client == nil {
		client = httpretry.New(&http.Client{Timeout: cfg.Timeout()}, 3)
	}
	return &Notifier{cfg: cfg, client: client, now: time.Now}
}

// Evaluate returns an alert for every plan whose EPC or CTR sits below the
// configured thresholds. Plans with no clicks at all are skipped; a zero EPC
// from zero activity is absence of data, not underperformance.
func (n *Notifier) Evaluate(metrics map[string]domain.AggregatedMetrics) []Alert {
	var alerts []Alert

	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m := metrics[id]
		if m.TotalClicks == 0 {
			continue
		}

		switch {
		case m.EPC < n.cfg.EPCCritical:
			alerts = append(alerts, Alert{
				PlanID:    id,
				Metric:    "epc",
				Value:     m.EPC,
				Threshold: n.cfg.EPCCritical,
				Severity:  SeverityCritical,
				Message:   fmt.Sprintf("plan %s EPC %.2f below critical threshold %.2f", id, m.EPC, n.cfg.EPCCritical),
			})
		case m.EPC < n.cfg.EPCWarning:
			alerts = append(alerts, Alert{
				PlanID:    id,
				Metric:    "epc",
				Value:     m.EPC,
				Threshold: n.cfg.EPCWarning,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("plan %s EPC %.2f below warning threshold %.2f", id, m.EPC, n.cfg.EPCWarning),
			})
		}

		if n.cfg.CTRWarning > 0 && m.CTR < n.cfg.CTRWarning {
			alerts = append(alerts, Alert{
				PlanID:    id,
				Metric:    "ctr",
				Value:     m.CTR,
				Threshold: n.cfg.CTRWarning,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("plan %s CTR %.2f%% below warning threshold %.2f%%", id, m.CTR, n.cfg.CTRWarning),
			})
		}
	}

	return alerts
}

// Send posts alerts to the configured webhook. When alerting is disabled or
// no webhook is configured, alerts are logged and dropped.
func (n *Notifier) Send(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if !n.cfg.Enabled || n.cfg.WebhookURL == "" {
		for _, a := range alerts {
			logger.Warn("alert (webhook disabled)", "plan_id", a.PlanID, "metric", a.Metric, "severity", string(a.Severity))
		}
		return nil
	}

	body, err := json.Marshal(payload{
		Source:    "planner-ranker",
		Timestamp: n.now().UTC(),
		Alerts:    alerts,
	})
	if err != nil {
		return fmt.Errorf("marshaling alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}

	logger.Info("alerts delivered", "count", len(alerts))
	return nil
}

// EvaluateAndSend is the one-call path used after a processing run.
func (n *Notifier) EvaluateAndSend(ctx context.Context, metrics map[string]domain.AggregatedMetrics) ([]Alert, error) {
	alerts := n.Evaluate(metrics)
	if err := n.Send(ctx, alerts); err != nil {
		return alerts, err
	}
	return alerts, nil
}

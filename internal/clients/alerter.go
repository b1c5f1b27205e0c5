package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Alerter raises operator-facing alerts for failures that need a human:
// unrecoverable processing errors and confirmation-email failures.
type Alerter interface {
	Alert(ctx context.Context, eventID, message string)
}

// OpsAlerter posts incidents to an ops webhook when one is configured and
// always logs them. Alerting is best-effort and never returns an error to the
// pipeline.
type OpsAlerter struct {
	webhookURL string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewOpsAlerter creates an alerter. An empty webhookURL means log-only.
func NewOpsAlerter(webhookURL string, logger *logrus.Logger) *OpsAlerter {
	return &OpsAlerter{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "clients.alerter"),
	}
}

// Alert records an incident for the given event.
func (a *OpsAlerter) Alert(ctx context.Context, eventID, message string) {
	incidentID := uuid.NewString()

	a.logger.WithFields(logrus.Fields{
		"incident_id": incidentID,
		"event_id":    eventID,
	}).Error(message)

	if a.webhookURL == "" {
		return
	}

	payload := map[string]string{
		"incidentId": incidentID,
		"eventId":    eventID,
		"message":    message,
		"service":    "invoicing-service",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(body))
	if err != nil {
		a.logger.WithError(err).Warn("failed to build alert request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.WithError(err).Warn("failed to deliver alert")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		a.logger.WithField("status", resp.StatusCode).Warn("alert webhook rejected incident")
	}
}

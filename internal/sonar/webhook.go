// Package sonar decodes SonarQube "analysis finished" webhooks.
package sonar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/CosmoTheDev/qgnotify/models"
)

// SignatureHeader is the header SonarQube sets when a webhook secret is configured.
const SignatureHeader = "X-Sonar-Webhook-HMAC-SHA256"

// ErrBadSignature is returned by Verify when the body does not match the signature.
var ErrBadSignature = errors.New("sonar: webhook signature mismatch")

// analysedAt layouts seen in the wild; SonarQube omits the colon in the offset.
var timeLayouts = []string{"2006-01-02T15:04:05-0700", time.RFC3339}

type webhookBody struct {
	ServerURL  string `json:"serverUrl"`
	TaskID     string `json:"taskId"`
	Status     string `json:"status"`
	AnalysedAt string `json:"analysedAt"`
	Project    struct {
		Key  string `json:"key"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"project"`
	Branch *struct {
		Name string `json:"name"`
	} `json:"branch"`
	QualityGate *struct {
		Name       string `json:"name"`
		Status     string `json:"status"`
		Conditions []struct {
			Metric         string `json:"metric"`
			Operator       string `json:"operator"`
			Value          string `json:"value"`
			Status         string `json:"status"`
			ErrorThreshold string `json:"errorThreshold"`
		} `json:"conditions"`
	} `json:"qualityGate"`
}

// Decode parses a webhook body into an AnalysisResult. The project URL falls
// back to <serverUrl>/dashboard?id=<key> when the body carries none.
func Decode(body []byte) (*models.AnalysisResult, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("sonar: decoding webhook: %w", err)
	}
	if wb.Project.Key == "" && wb.Project.Name == "" {
		return nil, fmt.Errorf("sonar: webhook has no project")
	}

	res := &models.AnalysisResult{
		Project: models.Project{
			Key:  wb.Project.Key,
			Name: wb.Project.Name,
			URL:  wb.Project.URL,
		},
		AnalysedAt: parseTime(wb.AnalysedAt),
	}
	if res.Project.Name == "" {
		res.Project.Name = res.Project.Key
	}
	if res.Project.URL == "" {
		res.Project.URL = DashboardURL(wb.ServerURL, wb.Project.Key)
	}
	if wb.Branch != nil {
		res.Branch = wb.Branch.Name
	}

	if qg := wb.QualityGate; qg != nil {
		gate := &models.QualityGate{
			Name:       qg.Name,
			Status:     models.MapStatus(qg.Status),
			Conditions: make([]models.Condition, 0, len(qg.Conditions)),
		}
		for _, c := range qg.Conditions {
			gate.Conditions = append(gate.Conditions, models.Condition{
				MetricKey: c.Metric,
				Value:     c.Value,
				Status:    models.MapStatus(c.Status),
			})
		}
		res.QualityGate = gate
	}
	return res, nil
}

// DashboardURL returns the project dashboard link on serverURL, or "" when
// either part is missing.
func DashboardURL(serverURL, projectKey string) string {
	if serverURL == "" || projectKey == "" {
		return ""
	}
	return strings.TrimRight(serverURL, "/") + "/dashboard?id=" + url.QueryEscape(projectKey)
}

// Verify checks signature (hex HMAC-SHA256 of body under secret). An empty
// secret disables verification.
func Verify(body []byte, secret, signature string) error {
	if secret == "" {
		return nil
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

func parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

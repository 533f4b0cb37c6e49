package core_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/model"
)

func sampleEvent() core.PipelineEvent {
	return core.PipelineEvent{
		Type:          "application.status_changed",
		JobID:         "job-1",
		ApplicationID: "app-1",
		CandidateID:   "actor-1",
		Status:        model.StatusInterview,
		Stage:         model.StageInterviews,
		OccurredAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookNotifierRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  core.WebhookConfig
	}{
		{"empty url", core.WebhookConfig{}},
		{"bad scheme", core.WebhookConfig{URL: "ftp://hooks.example.com"}},
		{"missing host", core.WebhookConfig{URL: "https://"}},
		{"bad body expression", core.WebhookConfig{
			URL:      "https://hooks.example.com/pipeline",
			BodyExpr: "unbalanced(",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.NewWebhookNotifier(tt.cfg, quietLogger())
			assert.Error(t, err)
		})
	}
}

func TestWebhookNotifierPostsRawEvent(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "s3cret", r.Header.Get("X-Hook-Token"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n, err := core.NewWebhookNotifier(core.WebhookConfig{
		URL:     srv.URL,
		Headers: map[string]string{"X-Hook-Token": "s3cret"},
	}, quietLogger())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))
	assert.Equal(t, "application.status_changed", received["type"])
	assert.Equal(t, "app-1", received["application_id"])
}

func TestWebhookNotifierShapesPayload(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
	}))
	defer srv.Close()

	n, err := core.NewWebhookNotifier(core.WebhookConfig{
		URL:      srv.URL,
		BodyExpr: "{kind: type, job: job_id, state: status}",
	}, quietLogger())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))
	assert.Equal(t, map[string]any{
		"kind":  "application.status_changed",
		"job":   "job-1",
		"state": "interview",
	}, received)
}

func TestWebhookNotifierRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n, err := core.NewWebhookNotifier(core.WebhookConfig{URL: srv.URL}, quietLogger())
	require.NoError(t, err)

	err = n.Notify(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

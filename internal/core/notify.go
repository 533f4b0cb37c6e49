package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// WebhookConfig describes an outbound pipeline webhook. BodyExpr is an
// optional JMESPath expression applied to the event JSON to shape the payload
// the remote system receives; empty means the raw event is posted.
type WebhookConfig struct {
	URL      string            `json:"url"`
	BodyExpr string            `json:"body_expr"`
	Headers  map[string]string `json:"headers"`
	Timeout  time.Duration     `json:"timeout"`
}

// WebhookNotifier implements Notifier by POSTing pipeline events to a
// configured endpoint.
type WebhookNotifier struct {
	cfg    WebhookConfig
	client *http.Client
	logger *slog.Logger
}

// NewWebhookNotifier validates the configuration, including compiling the
// body expression, so a bad webhook config fails at startup rather than on
// the first transition.
func NewWebhookNotifier(cfg WebhookConfig, logger *slog.Logger) (*WebhookNotifier, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid webhook URL scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("invalid webhook URL: missing host")
	}

	if strings.TrimSpace(cfg.BodyExpr) != "" {
		if _, err := jmespath.Compile(cfg.BodyExpr); err != nil {
			return nil, fmt.Errorf("invalid webhook body expression: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "webhook_notifier"),
	}, nil
}

// Notify posts the event to the configured endpoint. A non-2xx response is an
// error; callers treat delivery as best-effort.
func (n *WebhookNotifier) Notify(ctx context.Context, event PipelineEvent) error {
	body, err := n.shapePayload(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			n.logger.Warn("webhook response close failed", "err", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *WebhookNotifier) shapePayload(event PipelineEvent) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	expr := strings.TrimSpace(n.cfg.BodyExpr)
	if expr == "" {
		return raw, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode event for shaping: %w", err)
	}
	shaped, err := jmespath.Search(expr, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate body expression: %w", err)
	}
	body, err := json.Marshal(shaped)
	if err != nil {
		return nil, fmt.Errorf("marshal shaped payload: %w", err)
	}
	return body, nil
}

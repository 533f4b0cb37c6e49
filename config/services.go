package config

import "time"

// DiscoveryConfig tunes the discovery feed service.
type DiscoveryConfig struct {
	// FirstPageTTL bounds staleness of the cached first page of a filter
	// set. Zero disables first-page caching.
	FirstPageTTL time.Duration `env:"FIRST_PAGE_TTL" envDefault:"30s"`

	// DefaultPageSize is used when a request does not specify a page size.
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
}

// Sanitize applies guardrails to discovery configuration values.
func (d *DiscoveryConfig) Sanitize() {
	if d.FirstPageTTL < 0 {
		d.FirstPageTTL = 0
	}
	if d.DefaultPageSize <= 0 {
		d.DefaultPageSize = 20
	}
	if d.DefaultPageSize > 100 {
		d.DefaultPageSize = 100
	}
}

// MessagingConfig tunes the messaging service.
type MessagingConfig struct {
	// BadgeTTL bounds staleness of the cached unread badge. Zero disables
	// badge caching.
	BadgeTTL time.Duration `env:"BADGE_TTL" envDefault:"1m"`
}

// Sanitize applies guardrails to messaging configuration values.
func (m *MessagingConfig) Sanitize() {
	if m.BadgeTTL < 0 {
		m.BadgeTTL = 0
	}
}

// WebhookConfig configures the outbound pipeline webhook. An empty URL
// disables webhook delivery.
type WebhookConfig struct {
	URL string `env:"URL" envDefault:""`

	// BodyExpr is an optional JMESPath expression shaping the payload.
	BodyExpr string `env:"BODY_EXPR" envDefault:""`

	// Headers are extra headers sent with every delivery, as
	// "Name: value" pairs separated by the env separator.
	Headers map[string]string `env:"HEADERS" envDefault:"" envSeparator:";"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

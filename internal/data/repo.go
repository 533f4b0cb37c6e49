// Package data provides the repository layer for the backlot casting
// marketplace: job postings, applications, the hiring-pipeline coordinator,
// the discovery query planner, and messaging counters.
package data

import (
	"log/slog"
	"time"
)

const (
	defaultTxMaxAttempts = 3
	defaultTxRetryDelay  = 25 * time.Millisecond
)

// RepoConfig holds shared configuration options for the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
	// TxMaxAttempts bounds transaction retries on conflicting concurrent
	// updates. Zero means the default of 3 attempts.
	TxMaxAttempts int
	// TxRetryDelay is the base backoff between transaction attempts.
	TxRetryDelay time.Duration
}

func (c RepoConfig) timeProvider() TimeProvider {
	if c.TimeProvider != nil {
		return c.TimeProvider
	}
	return &RealTimeProvider{}
}

func (c RepoConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c RepoConfig) txMaxAttempts() int {
	if c.TxMaxAttempts > 0 {
		return c.TxMaxAttempts
	}
	return defaultTxMaxAttempts
}

func (c RepoConfig) txRetryDelay() time.Duration {
	if c.TxRetryDelay > 0 {
		return c.TxRetryDelay
	}
	return defaultTxRetryDelay
}

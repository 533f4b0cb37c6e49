// Package core provides the business logic for the backlot casting
// marketplace: pipeline authorization, discovery caching, messaging, and
// outbound notifications.
package core

import (
	"context"
	"time"

	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal
// architecture). Services depend on these contracts, not on the data layer.

// JobRepository defines the interface for job posting operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error)
	SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)
	SetStage(ctx context.Context, id string, stage model.HiringStage) (*model.Job, error)
	SoftDelete(ctx context.Context, id string) error
	RecomputeStatus(ctx context.Context, id string) (*model.Job, error)
}

// ApplicationRepository defines the interface for application operations.
// ChangeStatus and Apply update the application and the parent job's progress
// aggregate atomically.
type ApplicationRepository interface {
	Apply(ctx context.Context, req *model.ApplyRequest) (*model.JobApplication, error)
	ChangeStatus(ctx context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error)
	Reject(ctx context.Context, id, reason string) (*model.JobApplication, error)
	GetByID(ctx context.Context, id string) (*model.JobApplication, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error)
}

// JobSearchRepository defines the interface for the discovery feed.
type JobSearchRepository interface {
	Search(ctx context.Context, opts *model.JobSearchOptions) (*model.JobSearchPage, error)
}

// MessageRepository defines the interface for application message threads.
type MessageRepository interface {
	Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error)
	MarkRead(ctx context.Context, messageID string) error
	MarkAllRead(ctx context.Context, applicationID string) error
	UnreadCount(ctx context.Context, applicationID string) (int, error)
	GetByID(ctx context.Context, id string) (*model.Message, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*model.Message, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	// Set stores a value with the given key and TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key, returning nil bytes for a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes every key under a prefix, returning the count.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// IdentityProvider resolves a bearer credential to a marketplace identity.
type IdentityProvider interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// Notifier delivers pipeline events to an external system. Delivery is
// best-effort; a failed notification never rolls back the transition that
// produced it.
type Notifier interface {
	Notify(ctx context.Context, event PipelineEvent) error
}

// PipelineEvent describes a completed pipeline transition for outbound
// notification.
type PipelineEvent struct {
	Type          string                  `json:"type"`
	JobID         string                  `json:"job_id"`
	ApplicationID string                  `json:"application_id"`
	CandidateID   string                  `json:"candidate_id"`
	Status        model.ApplicationStatus `json:"status"`
	Stage         model.HiringStage       `json:"stage"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

package httpx

import (
	"context"

	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
)

// Handler-facing views of the core services. Defined here so handler tests
// can substitute doubles without touching the core package.

// JobAPI is the posting lifecycle surface used by job handlers.
type JobAPI interface {
	Create(ctx context.Context, identity auth.Identity, req *model.CreateJobRequest) (*model.Job, error)
	Get(ctx context.Context, identity auth.Identity, id string) (*model.Job, error)
	ListMine(ctx context.Context, identity auth.Identity) ([]*model.Job, error)
	SetStatus(ctx context.Context, identity auth.Identity, id string, status model.JobStatus) (*model.Job, error)
	SetStage(ctx context.Context, identity auth.Identity, id string, stage model.HiringStage) (*model.Job, error)
	Delete(ctx context.Context, identity auth.Identity, id string) error
}

// PipelineAPI is the application funnel surface used by application handlers.
type PipelineAPI interface {
	Apply(ctx context.Context, identity auth.Identity, req *model.ApplyRequest) (*model.JobApplication, error)
	ChangeStatus(ctx context.Context, identity auth.Identity, applicationID string, req model.StatusChangeRequest) (*model.JobApplication, error)
	Reject(ctx context.Context, identity auth.Identity, applicationID, reason string) (*model.JobApplication, error)
	GetApplication(ctx context.Context, identity auth.Identity, applicationID string) (*model.JobApplication, error)
	ListJobApplications(ctx context.Context, identity auth.Identity, jobID string) ([]*model.JobApplication, error)
}

// DiscoveryAPI is the feed surface used by discovery handlers.
type DiscoveryAPI interface {
	Search(ctx context.Context, opts *model.JobSearchOptions) (*model.JobSearchPage, error)
}

// MessagingAPI is the thread surface used by message handlers.
type MessagingAPI interface {
	Send(ctx context.Context, identity auth.Identity, req *model.SendMessageRequest) (*model.Message, error)
	Thread(ctx context.Context, identity auth.Identity, applicationID string) ([]*model.Message, error)
	MarkRead(ctx context.Context, identity auth.Identity, messageID string) error
	MarkAllRead(ctx context.Context, identity auth.Identity, applicationID string) error
	UnreadBadge(ctx context.Context, identity auth.Identity, applicationID string) (int, error)
}

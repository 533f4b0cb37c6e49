package core

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

const unreadBadgePrefix = "backlot:unread:"

// MessagingConfig holds tuning for the messaging service.
type MessagingConfig struct {
	// BadgeTTL bounds staleness of the cached unread counter. Zero disables
	// badge caching.
	BadgeTTL time.Duration `json:"badge_ttl"`
}

// DefaultMessagingConfig returns a MessagingConfig with sensible defaults.
func DefaultMessagingConfig() MessagingConfig {
	return MessagingConfig{BadgeTTL: time.Minute}
}

// MessagingServiceOptions groups dependencies for MessagingService.
type MessagingServiceOptions struct {
	Messages     MessageRepository     // Required
	Applications ApplicationRepository // Required
	Cache        CacheRepository       // Optional: unread badge cache
	Config       MessagingConfig
	Logger       *slog.Logger // Optional
}

// MessagingService guards application message threads: only the posting
// owner and the candidate may read or write a thread.
type MessagingService struct {
	msgs     MessageRepository
	apps     ApplicationRepository
	cache    CacheRepository
	badgeTTL time.Duration
	logger   *slog.Logger
}

// NewMessagingService constructs a new MessagingService.
func NewMessagingService(opts MessagingServiceOptions) (*MessagingService, error) {
	if opts.Messages == nil {
		return nil, apperrors.Internal("MessageRepository is required")
	}
	if opts.Applications == nil {
		return nil, apperrors.Internal("ApplicationRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MessagingService{
		msgs:     opts.Messages,
		apps:     opts.Applications,
		cache:    opts.Cache,
		badgeTTL: opts.Config.BadgeTTL,
		logger:   logger.With("component", "messaging_service"),
	}, nil
}

// Send posts a message to the thread. The sender id always comes from the
// identity.
func (s *MessagingService) Send(
	ctx context.Context,
	identity auth.Identity,
	req *model.SendMessageRequest,
) (*model.Message, error) {
	if req == nil {
		return nil, apperrors.Validation("send request is required")
	}
	if _, err := s.participantApplication(ctx, identity, req.ApplicationID); err != nil {
		return nil, err
	}
	req.SenderID = identity.UserID

	msg, err := s.msgs.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dropBadge(ctx, req.ApplicationID)
	return msg, nil
}

// Thread returns the full message thread for a participant.
func (s *MessagingService) Thread(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
) ([]*model.Message, error) {
	if _, err := s.participantApplication(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	return s.msgs.ListByApplication(ctx, applicationID)
}

// MarkRead marks one message read and moves the unread counter. Like
// MarkAllRead, it is reserved for the candidate side of the thread.
func (s *MessagingService) MarkRead(
	ctx context.Context,
	identity auth.Identity,
	messageID string,
) error {
	msg, err := s.msgs.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	app, err := s.participantApplication(ctx, identity, msg.ApplicationID)
	if err != nil {
		return err
	}
	if !identity.IsAdmin() && identity.UserID != app.CandidateID {
		return apperrors.Unauthorized("only the candidate can mark messages read")
	}

	if err := s.msgs.MarkRead(ctx, messageID); err != nil {
		return err
	}
	s.dropBadge(ctx, msg.ApplicationID)
	return nil
}

// MarkAllRead clears the thread's unread state. Only the candidate holds
// unread messages, so only the candidate (or an admin) may clear them.
func (s *MessagingService) MarkAllRead(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
) error {
	app, err := s.participantApplication(ctx, identity, applicationID)
	if err != nil {
		return err
	}
	if !identity.IsAdmin() && identity.UserID != app.CandidateID {
		return apperrors.Unauthorized("only the candidate can mark the thread read")
	}

	if err := s.msgs.MarkAllRead(ctx, applicationID); err != nil {
		return err
	}
	s.dropBadge(ctx, applicationID)
	return nil
}

// UnreadBadge returns the unread counter, served from cache when fresh.
func (s *MessagingService) UnreadBadge(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
) (int, error) {
	if _, err := s.participantApplication(ctx, identity, applicationID); err != nil {
		return 0, err
	}

	if s.badgeEnabled() {
		if raw, err := s.cache.Get(ctx, unreadBadgePrefix+applicationID); err == nil && raw != nil {
			if count, parseErr := strconv.Atoi(string(raw)); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.msgs.UnreadCount(ctx, applicationID)
	if err != nil {
		return 0, err
	}

	if s.badgeEnabled() {
		if err := s.cache.Set(ctx, unreadBadgePrefix+applicationID,
			[]byte(strconv.Itoa(count)), s.badgeTTL); err != nil {
			s.logger.WarnContext(ctx, "badge cache write failed", "err", err)
		}
	}
	return count, nil
}

func (s *MessagingService) badgeEnabled() bool {
	return s.cache != nil && s.badgeTTL > 0
}

func (s *MessagingService) dropBadge(ctx context.Context, applicationID string) {
	if !s.badgeEnabled() {
		return
	}
	if _, err := s.cache.Delete(ctx, unreadBadgePrefix+applicationID); err != nil {
		s.logger.WarnContext(ctx, "badge cache invalidation failed", "err", err)
	}
}

func (s *MessagingService) participantApplication(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
) (*model.JobApplication, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(identity, app) {
		return nil, apperrors.Unauthorized("not a participant in this application")
	}
	return app, nil
}

package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

const discoveryCachePrefix = "backlot:discovery:page:"

// DiscoveryConfig holds tuning for the discovery service.
type DiscoveryConfig struct {
	// FirstPageTTL bounds how stale a cached first page may get. Zero
	// disables caching entirely.
	FirstPageTTL time.Duration `json:"first_page_ttl"`
}

// DefaultDiscoveryConfig returns a DiscoveryConfig with sensible defaults.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{FirstPageTTL: 30 * time.Second}
}

// DiscoveryServiceOptions groups dependencies for DiscoveryService.
type DiscoveryServiceOptions struct {
	Search JobSearchRepository // Required
	Cache  CacheRepository     // Optional: first-page cache
	Config DiscoveryConfig
	Logger *slog.Logger // Optional
}

// DiscoveryService serves the candidate-facing feed. First pages, which take
// the bulk of traffic, are cached per filter set; cursor continuations always
// hit the repository. Cache failures degrade silently to the repository.
type DiscoveryService struct {
	search JobSearchRepository
	cache  CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewDiscoveryService constructs a new DiscoveryService.
func NewDiscoveryService(opts DiscoveryServiceOptions) (*DiscoveryService, error) {
	if opts.Search == nil {
		return nil, apperrors.Internal("JobSearchRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DiscoveryService{
		search: opts.Search,
		cache:  opts.Cache,
		ttl:    opts.Config.FirstPageTTL,
		logger: logger.With("component", "discovery_service"),
	}, nil
}

// Search returns one page of the discovery feed.
func (s *DiscoveryService) Search(ctx context.Context, opts *model.JobSearchOptions) (*model.JobSearchPage, error) {
	if opts == nil {
		opts = &model.JobSearchOptions{}
	}

	cacheable := s.cacheEnabled() && (opts.Cursor == nil || *opts.Cursor == "")
	var key string
	if cacheable {
		key = discoveryCacheKey(opts)
		if page := s.cachedPage(ctx, key); page != nil {
			return page, nil
		}
	}

	page, err := s.search.Search(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Degraded pages are intentionally not cached: they should disappear as
	// soon as the backing projection comes back.
	if cacheable && page.Resumable {
		s.storePage(ctx, key, page)
	}
	return page, nil
}

// InvalidateCache drops every cached first page. Called when postings change
// in ways that affect the feed.
func (s *DiscoveryService) InvalidateCache(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if _, err := s.cache.DeletePrefix(ctx, discoveryCachePrefix); err != nil {
		s.logger.WarnContext(ctx, "discovery cache invalidation failed", "err", err)
	}
}

func (s *DiscoveryService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *DiscoveryService) cachedPage(ctx context.Context, key string) *model.JobSearchPage {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "discovery cache read failed", "err", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var page model.JobSearchPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.logger.WarnContext(ctx, "discovery cache entry corrupt, dropping", "err", err)
		if _, delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "discovery cache delete failed", "err", delErr)
		}
		return nil
	}
	return &page
}

func (s *DiscoveryService) storePage(ctx context.Context, key string, page *model.JobSearchPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "discovery cache write failed", "err", err)
	}
}

// discoveryCacheKey derives a stable key from the filter set. Cursor is
// excluded; only first pages are keyed.
func discoveryCacheKey(opts *model.JobSearchOptions) string {
	keyed := *opts
	keyed.Cursor = nil

	raw, err := json.Marshal(keyed)
	if err != nil {
		return discoveryCachePrefix + "default"
	}
	sum := sha256.Sum256(raw)
	return discoveryCachePrefix + hex.EncodeToString(sum[:16])
}

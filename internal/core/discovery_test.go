package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/model"
	"github.com/backlot/backlot-api/internal/mocks"
	"github.com/backlot/backlot-api/internal/testutil"
)

const feedKeyPrefix = "backlot:discovery:page:"

func newDiscoveryService(t *testing.T, search core.JobSearchRepository, cache core.CacheRepository) *core.DiscoveryService {
	t.Helper()
	svc, err := core.NewDiscoveryService(core.DiscoveryServiceOptions{
		Search: search,
		Cache:  cache,
		Config: core.DiscoveryConfig{FirstPageTTL: 30 * time.Second},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	return svc
}

func indexedPage(ids ...string) *model.JobSearchPage {
	page := &model.JobSearchPage{Resumable: true}
	for _, id := range ids {
		page.Jobs = append(page.Jobs, &model.Job{ID: id})
	}
	return page
}

func TestDiscoverySearchCachesFirstPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	page := indexedPage("job-1", "job-2")
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page, nil)
	cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any(), 30*time.Second).
		DoAndReturn(func(_ context.Context, key string, raw []byte, _ time.Duration) error {
			assert.Contains(t, key, feedKeyPrefix)
			var stored model.JobSearchPage
			require.NoError(t, json.Unmarshal(raw, &stored))
			assert.Len(t, stored.Jobs, 2)
			return nil
		})

	svc := newDiscoveryService(t, search, cache)
	got, err := svc.Search(context.Background(), &model.JobSearchOptions{})
	require.NoError(t, err)
	assert.Len(t, got.Jobs, 2)
}

func TestDiscoverySearchServesCachedPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	raw, err := json.Marshal(indexedPage("job-9"))
	require.NoError(t, err)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(raw, nil)
	// No Search expectation: a cache hit must not touch the repository.

	svc := newDiscoveryService(t, search, cache)
	got, err := svc.Search(context.Background(), &model.JobSearchOptions{})
	require.NoError(t, err)
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "job-9", got.Jobs[0].ID)
}

func TestDiscoverySearchCursorBypassesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(indexedPage("job-3"), nil)
	// No cache expectations: continuation pages are never cached or looked up.

	svc := newDiscoveryService(t, search, cache)
	opts := &model.JobSearchOptions{Cursor: testutil.StringPtr("opaque-token")}
	_, err := svc.Search(context.Background(), opts)
	assert.NoError(t, err)
}

func TestDiscoverySearchDoesNotCacheDegradedPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	degraded := &model.JobSearchPage{
		Jobs:      []*model.Job{{ID: "job-1"}},
		Resumable: false,
	}
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(degraded, nil)
	// No Set expectation: degraded pages must vanish with the outage.

	svc := newDiscoveryService(t, search, cache)
	got, err := svc.Search(context.Background(), &model.JobSearchOptions{})
	require.NoError(t, err)
	assert.False(t, got.Resumable)
}

func TestDiscoverySearchDropsCorruptCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("{not json"), nil)
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(true, nil)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(indexedPage("job-1"), nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	svc := newDiscoveryService(t, search, cache)
	_, err := svc.Search(context.Background(), &model.JobSearchOptions{})
	assert.NoError(t, err)
}

func TestDiscoverySearchSurvivesCacheFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(indexedPage("job-1"), nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis down"))

	svc := newDiscoveryService(t, search, cache)
	got, err := svc.Search(context.Background(), &model.JobSearchOptions{})
	require.NoError(t, err)
	assert.Len(t, got.Jobs, 1)
}

func TestDiscoverySearchKeyVariesWithFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(indexedPage("job-1"), nil).Times(3)

	var keys []string
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string) ([]byte, error) {
			keys = append(keys, key)
			return nil, nil
		}).Times(3)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	svc := newDiscoveryService(t, search, cache)
	base := &model.JobSearchOptions{Sort: model.SortRecent}
	filtered := &model.JobSearchOptions{
		Sort:       model.SortRecent,
		Department: testutil.StringPtr("camera"),
	}
	for _, opts := range []*model.JobSearchOptions{base, filtered, base} {
		_, err := svc.Search(context.Background(), opts)
		require.NoError(t, err)
	}

	require.Len(t, keys, 3)
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, feedKeyPrefix), key)
	}
	assert.NotEqual(t, keys[0], keys[1], "different filters must not share a page")
	assert.Equal(t, keys[0], keys[2], "identical filters must share a key")
}

func TestDiscoveryWorksWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := mocks.NewMockJobSearchRepository(ctrl)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(indexedPage("job-1"), nil)

	svc, err := core.NewDiscoveryService(core.DiscoveryServiceOptions{
		Search: search,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), nil)
	assert.NoError(t, err)
}

func TestDiscoveryInvalidateCacheDropsPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().DeletePrefix(gomock.Any(), feedKeyPrefix).Return(3, nil)

	svc := newDiscoveryService(t, mocks.NewMockJobSearchRepository(ctrl), cache)
	svc.InvalidateCache(context.Background())
}

// Package mocks provides generated mock implementations for the core ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces defined in internal/core. To regenerate after an
// interface change, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockCache := mocks.NewMockCacheRepository(ctrl)
//	mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/backlot/backlot-api/internal/core CacheRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_search_repository_mock.go github.com/backlot/backlot-api/internal/core JobSearchRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=notifier_mock.go github.com/backlot/backlot-api/internal/core Notifier

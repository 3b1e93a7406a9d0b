// Package mocks provides mock implementations for testing the hirestats system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockStatsRepository(ctrl)
//	mockRepo.EXPECT().GetByKey(gomock.Any(), gomock.Any()).Return(rec, nil)
package mocks

// Generate mock for PostingRepository interface from internal/core package.
// This creates MockPostingRepository with methods for all PostingRepository interface methods:
// DistinctCombinations, DaysToHireTx
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=posting_repository_mock.go github.com/hiremetrics/hirestats/internal/core PostingRepository

// Generate mock for StatsRepository interface from internal/core package.
// This creates MockStatsRepository with methods for all StatsRepository interface methods:
// WithTx, GetByKey, GetByKeyTx, InsertTx, UpdateValuesTx
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=stats_repository_mock.go github.com/hiremetrics/hirestats/internal/core StatsRepository

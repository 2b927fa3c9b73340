package tests

import "context"

// Repository port (interface untuk persistence).
// All reads are scoped by userID; records are never updated after Save.
type Repository interface {
	Save(ctx context.Context, t *TestResult) error
	Get(ctx context.Context, userID string, id ResultID) (*TestResult, error)
	History(ctx context.Context, userID string, f HistoryFilter) (PaginatedResult, error)
	Stats(ctx context.Context, userID string) ([]TypeStats, error)
	Count(ctx context.Context, userID string) (int64, error)
}

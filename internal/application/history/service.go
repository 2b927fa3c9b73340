package history

import (
	"context"

	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Service implements the read-only query use-cases over stored results.
type Service struct {
	Repo tests.Repository
}

// History returns one page of a user's results, newest first, optionally
// filtered by test type. Unrecognized type filters are ignored, matching
// the behavior of dropping the filter rather than erroring.
func (s *Service) History(ctx context.Context, userID string, f tests.HistoryFilter) (tests.PaginatedResult, error) {
	if f.Page <= 0 {
		f.Page = defaultPage
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.TestType != "" && !tests.KnownType(f.TestType) {
		f.TestType = ""
	}
	return s.Repo.History(ctx, userID, f)
}

// Stats aggregates all of a user's records by test type and rolls the
// groups up into a summary.
func (s *Service) Stats(ctx context.Context, userID string) (tests.StatsReport, error) {
	byType, err := s.Repo.Stats(ctx, userID)
	if err != nil {
		return tests.StatsReport{}, err
	}
	total, err := s.Repo.Count(ctx, userID)
	if err != nil {
		return tests.StatsReport{}, err
	}
	return tests.Summarize(total, byType), nil
}

// Detail fetches one record by id, scoped to its owner. A record owned
// by someone else is indistinguishable from an absent one.
func (s *Service) Detail(ctx context.Context, userID string, id tests.ResultID) (*tests.TestResult, error) {
	return s.Repo.Get(ctx, userID, id)
}

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	domain "github.com/Samith-P/ciphercopdemo/internal/domain/tests"
)

type TestResultRepository struct {
	db *sql.DB
}

func NewTestResultRepository(db *sql.DB) *TestResultRepository {
	return &TestResultRepository{db: db}
}

// Save inserts one record. There is deliberately no upsert path: results
// are immutable and corrections are new records.
func (r *TestResultRepository) Save(ctx context.Context, t *domain.TestResult) error {
	const q = `
INSERT INTO test_results
(id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
 combined_risk_score, details_json, flags_json, recommendations_json,
 insights, processing_time_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?);
`
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var combined sql.NullInt64
	if t.Result.CombinedRiskScore != nil {
		combined = sql.NullInt64{Int64: int64(*t.Result.CombinedRiskScore), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.TestType,
		jsonOrEmpty(t.Input), t.Result.IsThreat, t.Result.ThreatLevel, t.Result.RiskScore,
		combined, jsonOrEmpty(t.Details), jsonOrEmptyList(t.Flags), jsonOrEmptyList(t.Recommendations),
		t.Insights, t.ProcessingTimeMS, created,
	)
	return err
}

const resultColumns = `
id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
combined_risk_score, details_json, flags_json, recommendations_json,
insights, processing_time_ms, created_at`

// Get fetches one record scoped to its owner. A record belonging to a
// different user looks exactly like a missing one.
func (r *TestResultRepository) Get(ctx context.Context, userID string, id domain.ResultID) (*domain.TestResult, error) {
	q := `SELECT` + resultColumns + `
FROM test_results
WHERE user_id=? AND id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, userID, id)
	t, err := scanResult(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// History returns one page sorted by created_at descending. Details and
// insights are omitted from page rows; they stay behind the detail fetch.
func (r *TestResultRepository) History(ctx context.Context, userID string, f domain.HistoryFilter) (domain.PaginatedResult, error) {
	offset := (f.Page - 1) * f.Limit

	q := `
SELECT id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
       combined_risk_score, flags_json, processing_time_ms, created_at
FROM test_results
WHERE user_id=?`
	args := []any{userID}
	if f.TestType != "" {
		q += " AND test_type = ?"
		args = append(args, f.TestType)
	}
	q += "\nORDER BY created_at DESC, id DESC\nLIMIT ? OFFSET ?;"
	args = append(args, f.Limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []*domain.TestResult
	for rows.Next() {
		var t domain.TestResult
		var inputJSON, flagsJSON []byte
		var combined sql.NullInt64
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.TestType, &inputJSON, &t.Result.IsThreat,
			&t.Result.ThreatLevel, &t.Result.RiskScore, &combined,
			&flagsJSON, &t.ProcessingTimeMS, &t.CreatedAt,
		); err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		_ = json.Unmarshal(inputJSON, &t.Input)
		_ = json.Unmarshal(flagsJSON, &t.Flags)
		if combined.Valid {
			v := int(combined.Int64)
			t.Result.CombinedRiskScore = &v
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.countFiltered(ctx, userID, f.TestType)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       out,
		Page:       f.Page,
		Limit:      f.Limit,
		Count:      len(out),
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

// Stats groups a user's records by test type.
func (r *TestResultRepository) Stats(ctx context.Context, userID string) ([]domain.TypeStats, error) {
	const q = `
SELECT test_type,
       COUNT(*)                    AS count,
       COALESCE(SUM(is_threat),0)  AS threats_found,
       COALESCE(AVG(risk_score),0) AS avg_risk_score,
       MAX(created_at)             AS last_test
FROM test_results
WHERE user_id=?
GROUP BY test_type;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TypeStats
	for rows.Next() {
		var g domain.TypeStats
		if err := rows.Scan(&g.TestType, &g.Count, &g.ThreatsFound, &g.AvgRiskScore, &g.LastTest); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Count returns the user's total record count.
func (r *TestResultRepository) Count(ctx context.Context, userID string) (int64, error) {
	return r.countFiltered(ctx, userID, "")
}

func (r *TestResultRepository) countFiltered(ctx context.Context, userID string, testType domain.TestType) (int64, error) {
	q := "SELECT COUNT(*) FROM test_results WHERE user_id = ?"
	args := []any{userID}
	if testType != "" {
		q += " AND test_type = ?"
		args = append(args, testType)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type scanFunc func(dest ...any) error

func scanResult(scan scanFunc) (*domain.TestResult, error) {
	var t domain.TestResult
	var inputJSON, detailsJSON, flagsJSON, recsJSON []byte
	var combined sql.NullInt64
	if err := scan(
		&t.ID, &t.UserID, &t.TestType, &inputJSON, &t.Result.IsThreat,
		&t.Result.ThreatLevel, &t.Result.RiskScore, &combined,
		&detailsJSON, &flagsJSON, &recsJSON,
		&t.Insights, &t.ProcessingTimeMS, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(inputJSON, &t.Input)
	_ = json.Unmarshal(detailsJSON, &t.Details)
	_ = json.Unmarshal(flagsJSON, &t.Flags)
	_ = json.Unmarshal(recsJSON, &t.Recommendations)
	if combined.Valid {
		v := int(combined.Int64)
		t.Result.CombinedRiskScore = &v
	}
	return &t, nil
}

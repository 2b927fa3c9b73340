package postgres

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

// TestResultRepository is the Postgres twin of the MySQL adapter; same
// insert-only contract, $n placeholders.
type TestResultRepository struct{ db *sql.DB }

func NewTestResultRepository(db *sql.DB) *TestResultRepository { return &TestResultRepository{db: db} }

func (r *TestResultRepository) Save(ctx context.Context, t *domain.TestResult) error {
	const q = `
INSERT INTO test_results
(id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
 combined_risk_score, details_json, flags_json, recommendations_json,
 insights, processing_time_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14);
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
		mustJSON(t.Input, "{}"), t.Result.IsThreat, t.Result.ThreatLevel, t.Result.RiskScore,
		combined, mustJSON(t.Details, "{}"), mustJSON(t.Flags, "[]"), mustJSON(t.Recommendations, "[]"),
		t.Insights, t.ProcessingTimeMS, created,
	)
	return err
}

func (r *TestResultRepository) Get(ctx context.Context, userID string, id domain.ResultID) (*domain.TestResult, error) {
	const q = `
SELECT id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
       combined_risk_score, details_json, flags_json, recommendations_json,
       insights, processing_time_ms, created_at
FROM test_results
WHERE user_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, userID, id)

	var t domain.TestResult
	var inputJSON, detailsJSON, flagsJSON, recsJSON []byte
	var combined sql.NullInt64
	if err := row.Scan(
		&t.ID, &t.UserID, &t.TestType, &inputJSON, &t.Result.IsThreat,
		&t.Result.ThreatLevel, &t.Result.RiskScore, &combined,
		&detailsJSON, &flagsJSON, &recsJSON,
		&t.Insights, &t.ProcessingTimeMS, &t.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
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

func (r *TestResultRepository) History(ctx context.Context, userID string, f domain.HistoryFilter) (domain.PaginatedResult, error) {
	offset := (f.Page - 1) * f.Limit

	q := `
SELECT id, user_id, test_type, input_json, is_threat, threat_level, risk_score,
       combined_risk_score, flags_json, processing_time_ms, created_at
FROM test_results
WHERE user_id=$1`
	args := []any{userID}
	if f.TestType != "" {
		q += " AND test_type = $2"
		args = append(args, f.TestType)
	}
	q += fmt.Sprintf("\nORDER BY created_at DESC, id DESC\nLIMIT $%d OFFSET $%d;", len(args)+1, len(args)+2)
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

func (r *TestResultRepository) Stats(ctx context.Context, userID string) ([]domain.TypeStats, error) {
	const q = `
SELECT test_type,
       COUNT(*)                                          AS count,
       COALESCE(SUM(CASE WHEN is_threat THEN 1 ELSE 0 END),0) AS threats_found,
       COALESCE(AVG(risk_score),0)                       AS avg_risk_score,
       MAX(created_at)                                   AS last_test
FROM test_results
WHERE user_id=$1
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

func (r *TestResultRepository) Count(ctx context.Context, userID string) (int64, error) {
	return r.countFiltered(ctx, userID, "")
}

func (r *TestResultRepository) countFiltered(ctx context.Context, userID string, testType domain.TestType) (int64, error) {
	q := "SELECT COUNT(*) FROM test_results WHERE user_id = $1"
	args := []any{userID}
	if testType != "" {
		q += " AND test_type = $2"
		args = append(args, testType)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func mustJSON(v any, empty string) []byte {
	b, err := json.Marshal(v)
	// Nil maps and slices marshal to "null"; the columns want {} or [].
	if err != nil || string(b) == "null" {
		return []byte(empty)
	}
	return b
}

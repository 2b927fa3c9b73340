package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
)

// Every response uses the same envelope: {success:true, data:...} on
// success, {success:false, error:"..."} on failure.

func writeData(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// statusFor maps domain sentinels to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tests.ErrMissingInput), errors.Is(err, tests.ErrInvalidInput),
		errors.Is(err, users.ErrEmailTaken), errors.Is(err, users.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, tests.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// threatKey names the per-type boolean threat flag the frontend expects.
func threatKey(t tests.TestType) string {
	switch t {
	case tests.TypePhishing:
		return "isPhishing"
	case tests.TypeMalware, tests.TypeSandbox:
		return "isMalware"
	case tests.TypeClone:
		return "isClone"
	case tests.TypeScam:
		return "isScam"
	default:
		return "isThreat"
	}
}

// resultView shapes one record for responses. withDetails is false for
// history pages, which deliberately omit the heavy fields.
func resultView(t *tests.TestResult, withDetails bool) map[string]any {
	result := map[string]any{
		threatKey(t.TestType): t.Result.IsThreat,
		"threatLevel":         t.Result.ThreatLevel,
		"riskScore":           t.Result.RiskScore,
	}
	if t.Result.CombinedRiskScore != nil {
		result["combinedRiskScore"] = *t.Result.CombinedRiskScore
	}
	view := map[string]any{
		"id":             t.ID,
		"testType":       t.TestType,
		"inputData":      t.Input,
		"result":         result,
		"flags":          t.Flags,
		"processingTime": t.ProcessingTimeMS,
		"createdAt":      t.CreatedAt,
	}
	if withDetails {
		view["details"] = t.Details
		if len(t.Recommendations) > 0 {
			view["recommendations"] = t.Recommendations
		}
		if t.Insights != "" {
			view["insights"] = t.Insights
		}
	}
	return view
}

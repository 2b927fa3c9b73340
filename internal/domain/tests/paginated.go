package tests

// HistoryFilter narrows a history query. An unrecognized TestType is
// dropped by the caller before it reaches the repository.
type HistoryFilter struct {
	TestType TestType
	Page     int
	Limit    int
}

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Data       []*TestResult `json:"tests"`
	Page       int           `json:"current"`
	Limit      int           `json:"limit"`
	Count      int           `json:"count"`
	Total      int64         `json:"totalTests"`
	TotalPages int           `json:"total"`
}

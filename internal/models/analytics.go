package models

// AnalyticsSnapshot holds aggregate figures computed over the full search
// predicate, never the paginated slice. It is derived per query and never
// persisted.
type AnalyticsSnapshot struct {
	TotalAmount      float64 `json:"totalAmount"`
	AverageAmount    float64 `json:"averageAmount"`
	TransactionCount int64   `json:"transactionCount"`
	SuspiciousCount  int64   `json:"suspiciousCount"`
}

// Pagination describes the position of a result page within the full
// (un-paginated) result set.
type Pagination struct {
	CurrentPage       int   `json:"currentPage"`
	TotalPages        int   `json:"totalPages"`
	TotalTransactions int64 `json:"totalTransactions"`
	HasNext           bool  `json:"hasNext"`
	HasPrev           bool  `json:"hasPrev"`
}

// SearchResponse is the full search payload. Cached entries store exactly
// this shape, so repeated identical searches within a TTL window serialize
// identically.
type SearchResponse struct {
	Transactions []Transaction     `json:"transactions"`
	Pagination   Pagination        `json:"pagination"`
	Analytics    AnalyticsSnapshot `json:"analytics"`
}

// HighRiskAdvisory is the static advisory attached to the admin high-risk
// view. Values mirror the fixed heuristic thresholds.
type HighRiskAdvisory struct {
	AmountThreshold float64 `json:"amountThreshold"`
	WindowHours     int     `json:"windowHours"`
	Recommendation  string  `json:"recommendation"`
}

// HighRiskResponse wraps a regular search response with the advisory.
type HighRiskResponse struct {
	SearchResponse
	Advisory HighRiskAdvisory `json:"advisory"`
}

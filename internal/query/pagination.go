package query

import (
	"strings"

	"github.com/fraudsight/transaction-service/internal/models"
)

// DefaultSort is newest first.
const DefaultSort = "-createdAt"

// sortable whitelists the fields a caller may sort by.
var sortable = map[string]bool{
	FieldCreatedAt: true,
	FieldAmount:    true,
	FieldID:        true,
}

// Sort is a decoded sort specification.
type Sort struct {
	Field      string
	Descending bool
}

// ParseSort decodes a sort string: a leading "-" selects descending order on
// the remaining field name. Fields outside the whitelist clamp to the default
// (-createdAt) rather than erroring, matching the lenient posture of the rest
// of the filter parsing.
func ParseSort(raw string) Sort {
	s := strings.TrimSpace(raw)
	desc := false
	if strings.HasPrefix(s, "-") {
		desc = true
		s = s[1:]
	}
	if !sortable[s] {
		return Sort{Field: FieldCreatedAt, Descending: true}
	}
	return Sort{Field: s, Descending: desc}
}

// ClampLimit forces a page size into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// PageRequest is a clamped page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page to >= 1 and limit to [1, MaxLimit].
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	return PageRequest{Page: page, Limit: ClampLimit(limit)}
}

// Offset is the zero-based row offset of the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta derives page metadata from the total count evaluated against the full
// predicate, not the returned slice.
func (p PageRequest) Meta(total int64) models.Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return models.Pagination{
		CurrentPage:       p.Page,
		TotalPages:        totalPages,
		TotalTransactions: total,
		HasNext:           p.Page < totalPages,
		HasPrev:           p.Page > 1,
	}
}

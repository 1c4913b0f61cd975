package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fraudsight/transaction-service/internal/errors"
)

const (
	DefaultLimit  = 50
	MaxLimit      = 100
	maxSearchTerm = 100
)

// Filter is the typed search filter. Every field is optional; absent fields
// contribute nothing to the predicate. The outer validator has already
// checked raw shapes, but parsing stays defensive regardless.
type Filter struct {
	AmountMin       *float64   `json:"amount_min,omitempty"`
	AmountMax       *float64   `json:"amount_max,omitempty"`
	DateFrom        *time.Time `json:"date_from,omitempty"`
	DateTo          *time.Time `json:"date_to,omitempty"`
	CreatedHoursAgo *int       `json:"created_hours_ago,omitempty"`
	UserID          *int64     `json:"user_id,omitempty"` // effective for admins only
	UserCreatedDays *int       `json:"user_created_days,omitempty"`
	Type            string     `json:"type,omitempty"`
	Status          string     `json:"status,omitempty"`
	Search          string     `json:"search,omitempty"`
	Page            int        `json:"page"`
	Limit           int        `json:"limit"`
	Sort            string     `json:"sort"`
}

// ParseFilter normalizes raw query parameters into a Filter. Pagination is
// clamped (page >= 1, limit in [1,100]), the search term is truncated to 100
// characters, and amount_min > amount_max is rejected.
func ParseFilter(values url.Values) (Filter, error) {
	f := Filter{
		Page:  1,
		Limit: DefaultLimit,
		Sort:  DefaultSort,
	}

	var err error
	if f.AmountMin, err = parseFloat(values.Get("amount_min")); err != nil {
		return f, errors.NewValidationError("amount_min", "must be a decimal number")
	}
	if f.AmountMax, err = parseFloat(values.Get("amount_max")); err != nil {
		return f, errors.NewValidationError("amount_max", "must be a decimal number")
	}
	if f.AmountMin != nil && f.AmountMax != nil && *f.AmountMin > *f.AmountMax {
		return f, errors.NewValidationError("amount_min", "must not exceed amount_max")
	}

	if f.DateFrom, err = parseDate(values.Get("date_from")); err != nil {
		return f, errors.NewValidationError("date_from", "must be an ISO-8601 date")
	}
	if f.DateTo, err = parseDate(values.Get("date_to")); err != nil {
		return f, errors.NewValidationError("date_to", "must be an ISO-8601 date")
	}

	if f.CreatedHoursAgo, err = parseInt(values.Get("created_hours_ago")); err != nil {
		return f, errors.NewValidationError("created_hours_ago", "must be an integer")
	}
	if f.UserCreatedDays, err = parseInt(values.Get("user_created_days")); err != nil {
		return f, errors.NewValidationError("user_created_days", "must be an integer")
	}
	if f.UserID, err = parseInt64(values.Get("user_id")); err != nil {
		return f, errors.NewValidationError("user_id", "must be an integer")
	}

	f.Type = values.Get("type")
	f.Status = values.Get("status")

	f.Search = strings.TrimSpace(values.Get("search"))
	if len(f.Search) > maxSearchTerm {
		f.Search = f.Search[:maxSearchTerm]
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.NewValidationError("page", "must be an integer")
		}
		if page > 1 {
			f.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.NewValidationError("limit", "must be an integer")
		}
		f.Limit = ClampLimit(limit)
	}
	if raw := values.Get("sort"); raw != "" {
		f.Sort = raw
	}

	return f, nil
}

func parseFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt64(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate accepts a date or a full RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

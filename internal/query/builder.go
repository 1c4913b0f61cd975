package query

import "time"

// Scope is the access scope resolved from the authenticated caller. Admin
// scopes are unrestricted; everyone else is pinned to their own user id.
type Scope struct {
	UserID int64
	Admin  bool
}

// Build converts a normalized filter plus an access scope into a predicate
// conjunction.
//
// Scope is a hard security invariant: for non-admin callers any
// caller-supplied user_id is ignored and ownership is forced to the caller's
// own id. Admins may narrow by an explicit user_id. Callers with no resolved
// identity must be rejected before this point.
func Build(f Filter, scope Scope, now time.Time) Predicate {
	var preds []Predicate

	if scope.Admin {
		if f.UserID != nil {
			preds = append(preds, Eq{Field: FieldUserID, Value: *f.UserID})
		}
	} else {
		preds = append(preds, Eq{Field: FieldUserID, Value: scope.UserID})
	}

	if f.AmountMin != nil || f.AmountMax != nil {
		r := Range{Field: FieldAmount}
		if f.AmountMin != nil {
			r.Min = *f.AmountMin
		}
		if f.AmountMax != nil {
			r.Max = *f.AmountMax
		}
		preds = append(preds, r)
	}

	if p := dateRange(f, now); p != nil {
		preds = append(preds, p)
	}

	if f.Type != "" {
		preds = append(preds, Eq{Field: FieldType, Value: f.Type})
	}
	if f.Status != "" {
		preds = append(preds, Eq{Field: FieldStatus, Value: f.Status})
	}

	if f.UserCreatedDays != nil {
		preds = append(preds, UserCreatedSince{After: now.AddDate(0, 0, -*f.UserCreatedDays)})
	}

	if f.Search != "" {
		preds = append(preds, Or{Preds: []Predicate{
			Contains{Field: FieldDescription, Term: f.Search},
			Contains{Field: FieldMerchant, Term: f.Search},
			Contains{Field: FieldLocation, Term: f.Search},
		}})
	}

	return And{Preds: preds}
}

// dateRange builds the creation-time bounds. A relative created_hours_ago
// window always overrides an explicit date_from lower bound; date_to is kept
// either way.
func dateRange(f Filter, now time.Time) Predicate {
	r := Range{Field: FieldCreatedAt}
	if f.DateFrom != nil {
		r.Min = *f.DateFrom
	}
	if f.CreatedHoursAgo != nil {
		r.Min = now.Add(-time.Duration(*f.CreatedHoursAgo) * time.Hour)
	}
	if f.DateTo != nil {
		r.Max = *f.DateTo
	}
	if r.Min == nil && r.Max == nil {
		return nil
	}
	return r
}

// Suspicious heuristic thresholds. Fixed constants, not configuration.
const (
	SuspiciousAmount         = 10000
	SuspiciousRecentAmount   = 5000
	SuspiciousRecentWindow   = 24 * time.Hour
	SuspiciousWithdrawal     = 1000
	SuspiciousWithdrawalType = "withdrawal"
)

// SuspiciousClause is the fixed high-risk heuristic: a disjunction of three
// independent conjunctions evaluated relative to now. Callers conjoin it with
// their search predicate to count suspicious rows within the same result set.
func SuspiciousClause(now time.Time) Predicate {
	return Or{Preds: []Predicate{
		Range{Field: FieldAmount, Min: float64(SuspiciousAmount)},
		And{Preds: []Predicate{
			Range{Field: FieldAmount, Min: float64(SuspiciousRecentAmount)},
			Range{Field: FieldCreatedAt, Min: now.Add(-SuspiciousRecentWindow)},
		}},
		And{Preds: []Predicate{
			Eq{Field: FieldType, Value: SuspiciousWithdrawalType},
			Range{Field: FieldAmount, Min: float64(SuspiciousWithdrawal)},
		}},
	}}
}

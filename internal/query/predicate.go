package query

import "time"

// Predicate describes filter conditions over the transaction set as a tagged
// variant tree. The persistence gateway interprets the same tree for
// selection, counting and aggregation, so every evaluation of one predicate
// sees one set of rows.
type Predicate interface {
	isPredicate()
}

// And matches rows satisfying every child predicate. An empty And matches
// everything.
type And struct {
	Preds []Predicate
}

// Or matches rows satisfying at least one child predicate.
type Or struct {
	Preds []Predicate
}

// Range bounds a single field. Nil bounds are open; set bounds are inclusive.
// Values are float64 for amount fields and time.Time for date fields.
type Range struct {
	Field string
	Min   interface{}
	Max   interface{}
}

// Eq matches a field exactly.
type Eq struct {
	Field string
	Value interface{}
}

// Contains matches a case-insensitive substring of a text field.
type Contains struct {
	Field string
	Term  string
}

// UserCreatedSince restricts to transactions whose owning user account was
// created at or after the given instant. It is a separate leaf because it
// filters on the users relation rather than a transaction column.
type UserCreatedSince struct {
	After time.Time
}

func (And) isPredicate()              {}
func (Or) isPredicate()               {}
func (Range) isPredicate()            {}
func (Eq) isPredicate()               {}
func (Contains) isPredicate()         {}
func (UserCreatedSince) isPredicate() {}

// Field names understood by the persistence gateway.
const (
	FieldAmount      = "amount"
	FieldCreatedAt   = "createdAt"
	FieldType        = "type"
	FieldStatus      = "status"
	FieldUserID      = "userId"
	FieldDescription = "description"
	FieldMerchant    = "merchant"
	FieldLocation    = "location"
	FieldID          = "id"
)

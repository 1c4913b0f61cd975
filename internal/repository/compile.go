package repository

import (
	"fmt"
	"strings"

	"github.com/fraudsight/transaction-service/internal/query"
)

// columns maps predicate field names to transaction table columns. Acting as
// a whitelist, it keeps caller-influenced field names out of SQL text.
var columns = map[string]string{
	query.FieldID:          "id",
	query.FieldUserID:      "user_id",
	query.FieldAmount:      "amount",
	query.FieldType:        "type",
	query.FieldStatus:      "status",
	query.FieldDescription: "description",
	query.FieldMerchant:    "merchant",
	query.FieldLocation:    "location",
	query.FieldCreatedAt:   "created_at",
}

// sqlBuilder accumulates positional arguments while compiling a predicate
// tree into a WHERE expression.
type sqlBuilder struct {
	args []interface{}
}

func (b *sqlBuilder) placeholder(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) compile(p query.Predicate) (string, error) {
	switch p := p.(type) {
	case query.And:
		return b.compileJunction(p.Preds, " AND ", "TRUE")
	case query.Or:
		return b.compileJunction(p.Preds, " OR ", "FALSE")
	case query.Range:
		return b.compileRange(p)
	case query.Eq:
		col, ok := columns[p.Field]
		if !ok {
			return "", fmt.Errorf("unknown predicate field: %s", p.Field)
		}
		return fmt.Sprintf("%s = %s", col, b.placeholder(p.Value)), nil
	case query.Contains:
		col, ok := columns[p.Field]
		if !ok {
			return "", fmt.Errorf("unknown predicate field: %s", p.Field)
		}
		pattern := "%" + escapeLike(p.Term) + "%"
		return fmt.Sprintf("%s ILIKE %s", col, b.placeholder(pattern)), nil
	case query.UserCreatedSince:
		return fmt.Sprintf("user_id IN (SELECT id FROM fraud.users WHERE created_at >= %s)",
			b.placeholder(p.After)), nil
	default:
		return "", fmt.Errorf("unknown predicate node: %T", p)
	}
}

func (b *sqlBuilder) compileJunction(preds []query.Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, child := range preds {
		expr, err := b.compile(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *sqlBuilder) compileRange(p query.Range) (string, error) {
	col, ok := columns[p.Field]
	if !ok {
		return "", fmt.Errorf("unknown predicate field: %s", p.Field)
	}
	var parts []string
	if p.Min != nil {
		parts = append(parts, fmt.Sprintf("%s >= %s", col, b.placeholder(p.Min)))
	}
	if p.Max != nil {
		parts = append(parts, fmt.Sprintf("%s <= %s", col, b.placeholder(p.Max)))
	}
	switch len(parts) {
	case 0:
		return "TRUE", nil
	case 1:
		return parts[0], nil
	default:
		return "(" + parts[0] + " AND " + parts[1] + ")", nil
	}
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied search term.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// orderBy compiles a sort spec. A secondary id ASC keeps ordering (and page
// boundaries) deterministic when sort-key values tie.
func orderBy(s query.Sort) string {
	col, ok := columns[s.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	if col == "id" {
		return fmt.Sprintf("id %s", dir)
	}
	return fmt.Sprintf("%s %s, id ASC", col, dir)
}

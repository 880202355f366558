package ledger

import (
	"sort"
	"strings"

	"finance-tracker/internal/domain"

	"github.com/google/uuid"
)

type SortKey string

const (
	SortDateDesc   SortKey = "date_desc"
	SortDateAsc    SortKey = "date_asc"
	SortAmountDesc SortKey = "amount_desc"
	SortAmountAsc  SortKey = "amount_asc"
)

// ParseSort maps a query value to a sort key. Unknown values fall back to date_desc.
func ParseSort(s string) SortKey {
	switch SortKey(s) {
	case SortDateAsc, SortAmountDesc, SortAmountAsc:
		return SortKey(s)
	default:
		return SortDateDesc
	}
}

// Query mirrors the list endpoint's query parameters. Zero values mean "any".
type Query struct {
	Kind       domain.Kind
	CategoryID uuid.UUID
	Month      string
	Sort       SortKey
}

// Filter keeps the transactions matching q and returns them in q.Sort order.
// Month matching is a prefix comparison of the ISO date against "YYYY-MM".
// Ties keep input order. The input slice is not modified.
func Filter(txns []domain.Transaction, q Query) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if q.Kind != "" && t.Kind != q.Kind {
			continue
		}
		if q.CategoryID != uuid.Nil && t.CategoryID != q.CategoryID {
			continue
		}
		if !strings.HasPrefix(t.Day(), q.Month) {
			continue
		}
		out = append(out, t)
	}

	var less func(a, b domain.Transaction) bool
	switch ParseSort(string(q.Sort)) {
	case SortAmountDesc:
		less = func(a, b domain.Transaction) bool { return a.Amount.GreaterThan(b.Amount) }
	case SortAmountAsc:
		less = func(a, b domain.Transaction) bool { return a.Amount.LessThan(b.Amount) }
	case SortDateAsc:
		less = func(a, b domain.Transaction) bool { return a.Day() < b.Day() }
	default:
		less = func(a, b domain.Transaction) bool { return a.Day() > b.Day() }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

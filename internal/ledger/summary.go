// Package ledger holds the pure reductions shared by the API server, the Telegram
// bot and the offline guest client: the monthly summary, the transaction
// filter/sort and the investment portfolio breakdown.
package ledger

import (
	"sort"

	"finance-tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summarize reduces one month of one owner's transactions into totals, a
// per-category ranking and a daily series.
//
// Preconditions: txns are already restricted to the month and owner, amounts
// are positive and dates valid. Nothing is validated here. A transaction whose
// category cannot be resolved (neither in categories nor embedded in the
// transaction) still counts toward totals and series but is left out of
// ByCategory.
func Summarize(month string, txns []domain.Transaction, categories []domain.Category) domain.Summary {
	byID := make(map[uuid.UUID]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	income := decimal.Zero
	expense := decimal.Zero
	ranking := make([]domain.CategoryTotal, 0)
	rankIdx := make(map[uuid.UUID]int)
	days := make(map[string]*domain.DayTotal)

	for _, t := range txns {
		day, ok := days[t.Day()]
		if !ok {
			day = &domain.DayTotal{Date: t.Day(), IncomeTotal: decimal.Zero, ExpenseTotal: decimal.Zero}
			days[t.Day()] = day
		}

		if t.Kind == domain.Income {
			income = income.Add(t.Amount)
			day.IncomeTotal = day.IncomeTotal.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
			day.ExpenseTotal = day.ExpenseTotal.Add(t.Amount)
		}

		cat, ok := resolveCategory(t, byID)
		if !ok {
			continue
		}
		// category totals are not split by kind
		if i, seen := rankIdx[cat.ID]; seen {
			ranking[i].Total = ranking[i].Total.Add(t.Amount)
			continue
		}
		rankIdx[cat.ID] = len(ranking)
		ranking = append(ranking, domain.CategoryTotal{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Total:        t.Amount,
			Group:        cat.Group,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Total.GreaterThan(ranking[j].Total)
	})

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	series := make([]domain.DayTotal, 0, len(keys))
	for _, k := range keys {
		series = append(series, *days[k])
	}

	return domain.Summary{
		Month: month,
		Totals: domain.Totals{
			Income:  income,
			Expense: expense,
			Balance: income.Sub(expense),
		},
		ByCategory: ranking,
		Series:     series,
	}
}

func resolveCategory(t domain.Transaction, byID map[uuid.UUID]domain.Category) (domain.Category, bool) {
	if c, ok := byID[t.CategoryID]; ok {
		return c, true
	}
	if t.Category != nil && t.Category.ID == t.CategoryID {
		return *t.Category, true
	}
	return domain.Category{}, false
}

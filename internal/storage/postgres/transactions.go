package postgres

import (
	"context"
	"fmt"
	"strings"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"

	"github.com/google/uuid"
)

const transactionColumns = `t.id, t.user_id, t.type, t.amount, t.occurred_on, t.category_id, t.note, t.created_at`

var transactionOrder = map[ledger.SortKey]string{
	ledger.SortDateDesc:   "t.occurred_on DESC",
	ledger.SortDateAsc:    "t.occurred_on ASC",
	ledger.SortAmountDesc: "t.amount DESC",
	ledger.SortAmountAsc:  "t.amount ASC",
}

func scanTransaction(row rowScanner, withCategory bool) (domain.Transaction, error) {
	var t domain.Transaction
	var note *string
	dest := []any{&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.OccurredOn, &t.CategoryID, &note, &t.CreatedAt}

	var c domain.Category
	if withCategory {
		dest = append(dest, &c.ID, &c.UserID, &c.Name, &c.Group, &c.Icon, &c.IsActive)
	}
	if err := row.Scan(dest...); err != nil {
		return t, err
	}
	if note != nil {
		t.Note = *note
	}
	if withCategory {
		t.Category = &c
	}
	return t, nil
}

// ListTransactions applies the same filters and orders as ledger.Filter, in SQL.
// Ties fall back to insertion order.
func (s *Storage) ListTransactions(ctx context.Context, userID uuid.UUID, q ledger.Query) ([]domain.Transaction, error) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Month != "" {
		start, end, err := ledger.MonthRange(q.Month)
		if err != nil {
			return nil, err
		}
		where = append(where, "t.occurred_on >= "+arg(start), "t.occurred_on < "+arg(end))
	}
	if q.Kind != "" {
		where = append(where, "t.type = "+arg(q.Kind))
	}
	if q.CategoryID != uuid.Nil {
		where = append(where, "t.category_id = "+arg(q.CategoryID))
	}

	sql := `SELECT ` + transactionColumns + `, c.id, c.user_id, c.name, c.category_group, c.icon, c.is_active
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + transactionOrder[ledger.ParseSort(string(q.Sort))] + `, t.created_at, t.id`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *Storage) CreateTransaction(ctx context.Context, userID uuid.UUID, in domain.TransactionInput) (domain.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRow(ctx, `
		INSERT INTO transactions AS t (user_id, type, amount, occurred_on, category_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		userID, in.Kind, in.Amount, in.OccurredOn, in.CategoryID, noteArg(in.Note)), false)
	return t, translate(err, "create transaction")
}

func (s *Storage) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, in domain.TransactionInput) (domain.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRow(ctx, `
		UPDATE transactions AS t
		SET type = $3, amount = $4, occurred_on = $5, category_id = $6, note = $7, updated_at = now()
		WHERE t.id = $1 AND t.user_id = $2
		RETURNING `+transactionColumns,
		id, userID, in.Kind, in.Amount, in.OccurredOn, in.CategoryID, noteArg(in.Note)), false)
	return t, translate(err, "update transaction")
}

func (s *Storage) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, "delete transaction")
	}
	return nil
}

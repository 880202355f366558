// internal/export/export.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finance-tracker/internal/domain"

	"github.com/xuri/excelize/v2"
)

var header = []string{"date", "type", "category", "group", "amount", "note"}

func row(t domain.Transaction) []string {
	var name, group string
	if t.Category != nil {
		name, group = t.Category.Name, string(t.Category.Group)
	}
	return []string{t.Day(), string(t.Kind), name, group, t.Amount.StringFixed(2), t.Note}
}

// WriteCSV writes transactions as UTF-8 CSV with a BOM so spreadsheet apps
// pick the right encoding for accented category names.
func WriteCSV(w io.Writer, txns []domain.Transaction) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		if err := cw.Write(row(t)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"

	// built-in "#,##0.00"
	moneyFormat = 4
)

// WriteXLSX writes a workbook with the transactions on one sheet and the
// month summary on another.
func WriteXLSX(w io.Writer, txns []domain.Transaction, summary domain.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, transactionsSheet, 1, header); err != nil {
		return err
	}
	for i, t := range txns {
		r := row(t)
		cells := []any{r[0], r[1], r[2], r[3], t.Amount.InexactFloat64(), r[5]}
		if err := writeRow(f, transactionsSheet, i+2, cells); err != nil {
			return err
		}
	}
	if len(txns) > 0 {
		if err := f.SetCellStyle(transactionsSheet, "E2", fmt.Sprintf("E%d", len(txns)+1), money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	_ = f.SetColWidth(transactionsSheet, "A", "B", 12)
	_ = f.SetColWidth(transactionsSheet, "C", "D", 22)
	_ = f.SetColWidth(transactionsSheet, "E", "E", 14)
	_ = f.SetColWidth(transactionsSheet, "F", "F", 40)

	if err := writeSummary(f, summary, money); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s domain.Summary, money int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"month", s.Month},
		{"income", s.Totals.Income.InexactFloat64()},
		{"expense", s.Totals.Expense.InexactFloat64()},
		{"balance", s.Totals.Balance.InexactFloat64()},
		{},
		{"category", "group", "total"},
	}
	for _, c := range s.ByCategory {
		rows = append(rows, []any{c.CategoryName, string(c.Group), c.Total.InexactFloat64()})
	}
	for i, r := range rows {
		if err := writeRow(f, summarySheet, i+1, r); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(summarySheet, "B2", "B4", money); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if len(s.ByCategory) > 0 {
		if err := f.SetCellStyle(summarySheet, "C7", fmt.Sprintf("C%d", len(rows)), money); err != nil {
			return fmt.Errorf("style category totals: %w", err)
		}
	}
	return nil
}

func writeRow[T any](f *excelize.File, sheet string, n int, values []T) error {
	if len(values) == 0 {
		return nil
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, n, err)
	}
	return nil
}

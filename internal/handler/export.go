// internal/handler/export.go
package handler

import (
	"fmt"
	"net/http"
	"time"

	"finance-tracker/internal/export"
	"finance-tracker/internal/ledger"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	store TransactionStore
	now   func() time.Time
}

func NewExportHandler(store TransactionStore) *ExportHandler {
	return &ExportHandler{store: store, now: time.Now}
}

func (h *ExportHandler) CSV(c *gin.Context) {
	month, ok := queryMonth(c)
	if !ok {
		return
	}
	txns, err := h.store.ListTransactions(c.Request.Context(), userID(c), ledger.Query{Month: month, Sort: ledger.SortDateAsc})
	if err != nil {
		storageError(c, err, "Transactions")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", attachment(month, h.now(), "csv"))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, txns); err != nil {
		internalError(c, err, "csv export failed")
	}
}

// XLSX exports a workbook. Without a month it covers everything and the
// summary sheet aggregates all of it.
func (h *ExportHandler) XLSX(c *gin.Context) {
	month, ok := queryMonth(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	txns, err := h.store.ListTransactions(ctx, userID(c), ledger.Query{Month: month, Sort: ledger.SortDateAsc})
	if err != nil {
		storageError(c, err, "Transactions")
		return
	}
	cats, err := h.store.ListCategories(ctx, userID(c))
	if err != nil {
		storageError(c, err, "Categories")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", attachment(month, h.now(), "xlsx"))
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, txns, ledger.Summarize(month, txns, cats)); err != nil {
		internalError(c, err, "xlsx export failed")
	}
}

func attachment(month string, now time.Time, ext string) string {
	if month == "" {
		month = "all-" + now.Format("20060102")
	}
	return fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"", month, ext)
}

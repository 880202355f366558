// internal/handler/transaction.go
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStore interface {
	storage.TransactionStorage
	storage.CategoryStorage
}

type TransactionHandler struct {
	store TransactionStore
	now   func() time.Time
}

func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store, now: time.Now}
}

type transactionRequest struct {
	Type       domain.Kind     `json:"type" validate:"txkind"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date" validate:"required"`
	CategoryID uuid.UUID       `json:"categoryId" validate:"required"`
	Note       *string         `json:"note" validate:"omitempty,max=500"`

	occurredOn time.Time
}

func (r *transactionRequest) check(problems map[string]string) {
	switch {
	case !r.Amount.IsPositive():
		problems["amount"] = "amount must be positive"
	case !domain.FitsPlaces(r.Amount, domain.MoneyPlaces):
		problems["amount"] = "amount must have at most 2 decimal places"
	}
	if r.Date != "" {
		d, ok := parseDate(r.Date)
		if !ok {
			problems["date"] = "date must be YYYY-MM-DD or an RFC 3339 timestamp"
		}
		r.occurredOn = d
	}
}

func (r transactionRequest) input() domain.TransactionInput {
	in := domain.TransactionInput{
		Kind:       r.Type,
		Amount:     r.Amount,
		OccurredOn: r.occurredOn,
		CategoryID: r.CategoryID,
	}
	if r.Note != nil {
		in.Note = strings.TrimSpace(*r.Note)
	}
	return in
}

// List godoc
// @Summary List the user's transactions
// @Param month query string false "YYYY-MM"
// @Param type query string false "INCOME or EXPENSE"
// @Param categoryId query string false "category uuid"
// @Param sort query string false "date_desc (default), date_asc, amount_desc, amount_asc"
// @Success 200 {array} domain.Transaction
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	txns, err := h.store.ListTransactions(c.Request.Context(), userID(c), q)
	if err != nil {
		storageError(c, err, "Transactions")
		return
	}
	c.JSON(http.StatusOK, txns)
}

func parseQuery(c *gin.Context) (ledger.Query, bool) {
	month, ok := queryMonth(c)
	if !ok {
		return ledger.Query{}, false
	}
	q := ledger.Query{Month: month, Sort: ledger.ParseSort(c.Query("sort"))}

	if kind := domain.Kind(strings.ToUpper(c.Query("type"))); kind != "" && kind != "ALL" {
		if !kind.Valid() {
			validationError(c, map[string]string{"type": "type must be INCOME or EXPENSE"})
			return q, false
		}
		q.Kind = kind
	}
	if raw := c.Query("categoryId"); raw != "" && raw != "ALL" {
		id, err := uuid.Parse(raw)
		if err != nil {
			validationError(c, map[string]string{"categoryId": "categoryId must be a uuid"})
			return q, false
		}
		q.CategoryID = id
	}
	return q, true
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req transactionRequest
	if !bindJSON(c, &req, req.check) {
		return
	}
	cat, ok := h.visibleCategory(c, req.CategoryID)
	if !ok {
		return
	}

	t, err := h.store.CreateTransaction(c.Request.Context(), userID(c), req.input())
	if err != nil {
		storageError(c, err, "Transaction")
		return
	}
	t.Category = &cat
	c.JSON(http.StatusCreated, t)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Transaction")
	if !ok {
		return
	}
	var req transactionRequest
	if !bindJSON(c, &req, req.check) {
		return
	}
	cat, ok := h.visibleCategory(c, req.CategoryID)
	if !ok {
		return
	}

	t, err := h.store.UpdateTransaction(c.Request.Context(), userID(c), id, req.input())
	if err != nil {
		storageError(c, err, "Transaction")
		return
	}
	t.Category = &cat
	c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Transaction")
	if !ok {
		return
	}
	if err := h.store.DeleteTransaction(c.Request.Context(), userID(c), id); err != nil {
		storageError(c, err, "Transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// visibleCategory rejects categories that belong to someone else.
func (h *TransactionHandler) visibleCategory(c *gin.Context, id uuid.UUID) (domain.Category, bool) {
	cat, err := h.store.GetCategory(c.Request.Context(), id)
	if err == nil && !cat.VisibleTo(userID(c)) {
		err = storage.ErrNotFound
	}
	if errors.Is(err, storage.ErrNotFound) {
		validationError(c, map[string]string{"categoryId": "unknown category"})
		return cat, false
	}
	if err != nil {
		internalError(c, err, "get category failed")
		return cat, false
	}
	return cat, true
}

// Summary godoc
// @Summary Month totals, category ranking and daily series
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {object} domain.Summary
// @Router /api/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	month, ok := queryMonth(c)
	if !ok {
		return
	}
	if month == "" {
		month = ledger.CurrentMonth(h.now())
	}

	txns, err := h.store.ListTransactions(c.Request.Context(), userID(c), ledger.Query{Month: month})
	if err != nil {
		storageError(c, err, "Transactions")
		return
	}
	cats, err := h.store.ListCategories(c.Request.Context(), userID(c))
	if err != nil {
		storageError(c, err, "Categories")
		return
	}
	c.JSON(http.StatusOK, ledger.Summarize(month, txns, cats))
}

// internal/handler/sync.go
package handler

import (
	"log/slog"
	"net/http"

	"finance-tracker/internal/apierr"
	"finance-tracker/internal/guest"
	"finance-tracker/internal/reconcile"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	store reconcile.AccountStorage
}

func NewSyncHandler(store reconcile.AccountStorage) *SyncHandler {
	return &SyncHandler{store: store}
}

// Sync godoc
// @Summary Upload a guest-mode blob into the account
// @Description Categories that already exist by name are reused. Transactions whose
// @Description category has no match follow the "fallback" policy: create, skip or first.
// @Param fallback query string false "create (default), skip, first"
// @Param request body guest.Data true "Guest data"
// @Success 200 {object} reconcile.Report
// @Router /api/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	fallback, err := reconcile.ParseFallback(c.Query("fallback"))
	if err != nil {
		validationError(c, map[string]string{"fallback": err.Error()})
		return
	}

	var data guest.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		validationError(c, map[string]string{"body": err.Error()})
		return
	}
	if err := guest.Validate(data); err != nil {
		validationError(c, map[string]string{"body": err.Error()})
		return
	}

	id := userID(c)
	report, err := reconcile.Sync(c.Request.Context(), data, reconcile.ForUser(h.store, id), reconcile.Options{
		Fallback: fallback,
		Logger:   slog.With("user_id", id),
	})
	if err != nil {
		slog.Error("sync failed", "error", err, "user_id", id)
		respondError(c, http.StatusInternalServerError, apierr.CodeInternal, "Sync stopped before completing", report)
		return
	}
	c.JSON(http.StatusOK, report)
}

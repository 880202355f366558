// internal/handler/response.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/apierr"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"
	val "finance-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func respondError(c *gin.Context, status int, code, msg string, details any) {
	c.AbortWithStatusJSON(status, apierr.New(code, msg, details))
}

func validationError(c *gin.Context, details any) {
	respondError(c, http.StatusBadRequest, apierr.CodeValidation, "Invalid data", details)
}

func notFound(c *gin.Context, what string) {
	respondError(c, http.StatusNotFound, apierr.CodeNotFound, what+" not found", nil)
}

func internalError(c *gin.Context, err error, msg string, args ...any) {
	slog.Error(msg, append([]any{"error", err, "path", c.FullPath()}, args...)...)
	respondError(c, http.StatusInternalServerError, apierr.CodeInternal, "Internal server error", nil)
}

// storageError maps the storage sentinels onto responses.
func storageError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		notFound(c, what)
	case errors.Is(err, storage.ErrConflict):
		respondError(c, http.StatusConflict, apierr.CodeValidation, what+" already exists", nil)
	case errors.Is(err, storage.ErrInvalid):
		validationError(c, map[string]string{strings.ToLower(what): err.Error()})
	default:
		internalError(c, err, strings.ToLower(what)+" storage failed", "user_id", userID(c))
	}
}

// bindJSON decodes the body into dst and runs the struct validator. extra may
// add checks the tags can't express. It writes the error response itself.
func bindJSON(c *gin.Context, dst any, extra func(problems map[string]string)) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		validationError(c, map[string]string{"body": err.Error()})
		return false
	}
	problems := val.Struct(dst)
	if problems == nil {
		problems = make(map[string]string)
	}
	if extra != nil {
		extra(problems)
	}
	if len(problems) > 0 {
		validationError(c, problems)
		return false
	}
	return true
}

func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c, what)
		return uuid.Nil, false
	}
	return id, true
}

// queryMonth validates the optional month query parameter.
func queryMonth(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if month == "" {
		return "", true
	}
	if err := val.Validate.Var(month, "yearmonth"); err != nil {
		validationError(c, map[string]string{"month": "month must be in YYYY-MM format"})
		return "", false
	}
	return month, true
}

// parseDate accepts a calendar date or an RFC 3339 timestamp; timestamps are
// reduced to their UTC calendar day.
func parseDate(s string) (time.Time, bool) {
	if d, err := time.Parse(domain.DateLayout, s); err == nil {
		return d, true
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

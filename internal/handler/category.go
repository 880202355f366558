// internal/handler/category.go
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	store storage.CategoryStorage
}

func NewCategoryHandler(store storage.CategoryStorage) *CategoryHandler {
	return &CategoryHandler{store: store}
}

type categoryRequest struct {
	Name     string       `json:"name" validate:"required,notblank,max=64"`
	Group    domain.Group `json:"group" validate:"categorygroup"`
	Icon     *string      `json:"icon" validate:"omitempty,max=32"`
	IsActive *bool        `json:"isActive"`
}

func (r categoryRequest) input() domain.CategoryInput {
	in := domain.CategoryInput{
		Name:     strings.TrimSpace(r.Name),
		Group:    r.Group,
		Icon:     domain.DefaultIcon,
		IsActive: true,
	}
	if r.Icon != nil && strings.TrimSpace(*r.Icon) != "" {
		in.Icon = *r.Icon
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	return in
}

// List returns the global categories and the user's own, by name.
func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.store.ListCategories(c.Request.Context(), userID(c))
	if err != nil {
		storageError(c, err, "Categories")
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, nil) {
		return
	}
	cat, err := h.store.CreateCategory(c.Request.Context(), userID(c), req.input())
	if err != nil {
		storageError(c, err, "Category")
		return
	}
	slog.Info("category created", "user_id", userID(c), "category_id", cat.ID)
	c.JSON(http.StatusCreated, cat)
}

// Update only touches the user's own categories; globals answer 404.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Category")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req, nil) {
		return
	}
	cat, err := h.store.UpdateCategory(c.Request.Context(), userID(c), id, req.input())
	if err != nil {
		storageError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Delete deactivates the category so existing transactions keep their reference.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Category")
	if !ok {
		return
	}
	cat, err := h.store.DeactivateCategory(c.Request.Context(), userID(c), id)
	if err != nil {
		storageError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

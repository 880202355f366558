package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"

	"github.com/google/uuid"
)

const categoryColumns = `id, user_id, name, category_group, icon, is_active`

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Group, &c.Icon, &c.IsActive)
	return c, err
}

func (s *Storage) ListCategories(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY name, created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Storage) GetCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	return c, translate(err, "get category")
}

func (s *Storage) CreateCategory(ctx context.Context, userID uuid.UUID, in domain.CategoryInput) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, category_group, icon, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		userID, in.Name, in.Group, in.Icon, in.IsActive))
	return c, translate(err, "create category")
}

// UpdateCategory only touches rows owned by userID; global categories are read-only.
func (s *Storage) UpdateCategory(ctx context.Context, userID, id uuid.UUID, in domain.CategoryInput) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRow(ctx, `
		UPDATE categories
		SET name = $3, category_group = $4, icon = $5, is_active = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		id, userID, in.Name, in.Group, in.Icon, in.IsActive))
	return c, translate(err, "update category")
}

// DeactivateCategory soft-deletes so existing transactions keep a valid reference.
func (s *Storage) DeactivateCategory(ctx context.Context, userID, id uuid.UUID) (domain.Category, error) {
	c, err := scanCategory(s.db.QueryRow(ctx, `
		UPDATE categories SET is_active = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		id, userID))
	return c, translate(err, "deactivate category")
}

package postgres

import (
	"context"

	"finance-tracker/internal/domain"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at
	`, username, passwordHash).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, translate(err, "create user")
}

func (s *Storage) FindUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, translate(err, "find user")
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, translate(err, "get user")
}

// === TelegramStorage ===

func (s *Storage) LinkTelegram(ctx context.Context, telegramID int64, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO telegram_links (telegram_user_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (telegram_user_id) DO UPDATE SET user_id = EXCLUDED.user_id, linked_at = now()
	`, telegramID, userID)
	return translate(err, "link telegram")
}

func (s *Storage) UserByTelegram(ctx context.Context, telegramID int64) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT user_id FROM telegram_links WHERE telegram_user_id = $1
	`, telegramID).Scan(&id)
	return id, translate(err, "find telegram link")
}

// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrInvalid is a value the database rejected (check constraint, numeric overflow).
	ErrInvalid = errors.New("invalid value")
)

type UserStorage interface {
	CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type CategoryStorage interface {
	// ListCategories returns global categories plus the user's own, inactive ones included, by name.
	ListCategories(ctx context.Context, userID uuid.UUID) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (domain.Category, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, in domain.CategoryInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, in domain.CategoryInput) (domain.Category, error)
	DeactivateCategory(ctx context.Context, userID, id uuid.UUID) (domain.Category, error)
}

type TransactionStorage interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, q ledger.Query) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, userID uuid.UUID, in domain.TransactionInput) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, in domain.TransactionInput) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
}

type AssetStorage interface {
	ListAssets(ctx context.Context, userID uuid.UUID) ([]domain.Asset, error)
	CreateAsset(ctx context.Context, userID uuid.UUID, in domain.AssetInput) (domain.Asset, error)
	UpdateAsset(ctx context.Context, userID, id uuid.UUID, in domain.AssetInput) (domain.Asset, error)
	DeleteAsset(ctx context.Context, userID, id uuid.UUID) error
}

// TelegramStorage binds Telegram accounts to users for the bot.
type TelegramStorage interface {
	LinkTelegram(ctx context.Context, telegramID int64, userID uuid.UUID) error
	UserByTelegram(ctx context.Context, telegramID int64) (uuid.UUID, error)
}

type Storage interface {
	UserStorage
	CategoryStorage
	TransactionStorage
	AssetStorage
	TelegramStorage
}

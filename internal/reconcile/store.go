package reconcile

import (
	"context"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/google/uuid"
)

// AccountStorage is the part of storage a sync writes to.
type AccountStorage interface {
	storage.CategoryStorage
	storage.TransactionStorage
	storage.AssetStorage
}

type storeRemote struct {
	store  AccountStorage
	userID uuid.UUID
}

// ForUser applies a sync straight to storage on behalf of userID.
func ForUser(store AccountStorage, userID uuid.UUID) Remote {
	return &storeRemote{store: store, userID: userID}
}

func (r *storeRemote) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.store.ListCategories(ctx, r.userID)
}

func (r *storeRemote) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	return r.store.CreateCategory(ctx, r.userID, in)
}

func (r *storeRemote) CreateTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	return r.store.CreateTransaction(ctx, r.userID, in)
}

func (r *storeRemote) CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error) {
	return r.store.CreateAsset(ctx, r.userID, in)
}

package handler

import (
	"context"
	"sync"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/storage"

	"github.com/google/uuid"
)

// memStore is an in-memory storage.Storage with the same ownership rules as postgres.
type memStore struct {
	mu           sync.Mutex
	users        []domain.User
	categories   []domain.Category
	transactions []domain.Transaction
	assets       []domain.Asset
	telegram     map[int64]uuid.UUID
}

var _ storage.Storage = (*memStore)(nil)

func newMemStore(globals ...string) *memStore {
	s := &memStore{telegram: make(map[int64]uuid.UUID)}
	for _, name := range globals {
		s.categories = append(s.categories, domain.Category{
			ID: uuid.New(), Name: name, Group: domain.GroupOutros, Icon: domain.DefaultIcon, IsActive: true,
		})
	}
	return s
}

func (s *memStore) CreateUser(_ context.Context, username, hash string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return domain.User{}, storage.ErrConflict
		}
	}
	u := domain.User{ID: uuid.New(), Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	s.users = append(s.users, u)
	return u, nil
}

func (s *memStore) FindUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

func (s *memStore) GetUser(_ context.Context, id uuid.UUID) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

func (s *memStore) ListCategories(_ context.Context, userID uuid.UUID) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0)
	for _, c := range s.categories {
		if c.VisibleTo(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetCategory(_ context.Context, id uuid.UUID) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, storage.ErrNotFound
}

func (s *memStore) CreateCategory(_ context.Context, userID uuid.UUID, in domain.CategoryInput) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.UserID != nil && *c.UserID == userID && c.Name == in.Name {
			return domain.Category{}, storage.ErrConflict
		}
	}
	owner := userID
	c := domain.Category{ID: uuid.New(), UserID: &owner, Name: in.Name, Group: in.Group, Icon: in.Icon, IsActive: in.IsActive}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *memStore) ownCategory(userID, id uuid.UUID) (int, error) {
	for i, c := range s.categories {
		if c.ID == id && c.UserID != nil && *c.UserID == userID {
			return i, nil
		}
	}
	return -1, storage.ErrNotFound
}

func (s *memStore) UpdateCategory(_ context.Context, userID, id uuid.UUID, in domain.CategoryInput) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.ownCategory(userID, id)
	if err != nil {
		return domain.Category{}, err
	}
	c := &s.categories[i]
	c.Name, c.Group, c.Icon, c.IsActive = in.Name, in.Group, in.Icon, in.IsActive
	return *c, nil
}

func (s *memStore) DeactivateCategory(_ context.Context, userID, id uuid.UUID) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.ownCategory(userID, id)
	if err != nil {
		return domain.Category{}, err
	}
	s.categories[i].IsActive = false
	return s.categories[i], nil
}

func (s *memStore) ListTransactions(_ context.Context, userID uuid.UUID, q ledger.Query) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	own := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		for _, c := range s.categories {
			if c.ID == t.CategoryID {
				cat := c
				t.Category = &cat
			}
		}
		own = append(own, t)
	}
	return ledger.Filter(own, q), nil
}

func (s *memStore) CreateTransaction(_ context.Context, userID uuid.UUID, in domain.TransactionInput) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Transaction{
		ID: uuid.New(), UserID: userID, Kind: in.Kind, Amount: in.Amount,
		OccurredOn: in.OccurredOn, CategoryID: in.CategoryID, Note: in.Note, CreatedAt: time.Now(),
	}
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *memStore) UpdateTransaction(_ context.Context, userID, id uuid.UUID, in domain.TransactionInput) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.transactions {
		if t.ID == id && t.UserID == userID {
			t.Kind, t.Amount, t.OccurredOn, t.CategoryID, t.Note = in.Kind, in.Amount, in.OccurredOn, in.CategoryID, in.Note
			s.transactions[i] = t
			return t, nil
		}
	}
	return domain.Transaction{}, storage.ErrNotFound
}

func (s *memStore) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.transactions {
		if t.ID == id && t.UserID == userID {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memStore) ListAssets(_ context.Context, userID uuid.UUID) ([]domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Asset, 0)
	for i := len(s.assets) - 1; i >= 0; i-- {
		if s.assets[i].UserID == userID {
			out = append(out, s.assets[i])
		}
	}
	return out, nil
}

func (s *memStore) CreateAsset(_ context.Context, userID uuid.UUID, in domain.AssetInput) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.Asset{
		ID: uuid.New(), UserID: userID, SymbolOrName: in.SymbolOrName, AssetType: in.AssetType,
		Quantity: in.Quantity, AvgPrice: in.AvgPrice, CreatedAt: time.Now(),
	}
	s.assets = append(s.assets, a)
	return a, nil
}

func (s *memStore) UpdateAsset(_ context.Context, userID, id uuid.UUID, in domain.AssetInput) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.assets {
		if a.ID == id && a.UserID == userID {
			a.SymbolOrName, a.AssetType, a.Quantity, a.AvgPrice = in.SymbolOrName, in.AssetType, in.Quantity, in.AvgPrice
			s.assets[i] = a
			return a, nil
		}
	}
	return domain.Asset{}, storage.ErrNotFound
}

func (s *memStore) DeleteAsset(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.assets {
		if a.ID == id && a.UserID == userID {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memStore) LinkTelegram(_ context.Context, telegramID int64, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telegram[telegramID] = userID
	return nil
}

func (s *memStore) UserByTelegram(_ context.Context, telegramID int64) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.telegram[telegramID]
	if !ok {
		return uuid.Nil, storage.ErrNotFound
	}
	return id, nil
}

// internal/guest/repository.go
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/validator"

	"github.com/google/uuid"
)

// StorageKey is the key the blob lives under, shared with the web client.
const StorageKey = "gesturial.guest"

var (
	// ErrKeyNotFound is returned by a Store when nothing is stored under the key.
	ErrKeyNotFound = errors.New("guest: key not found")
	ErrNotFound    = errors.New("guest: item not found")
	ErrInvalid     = errors.New("guest: invalid item")
)

// Store is a flat key/value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Repository owns the guest blob. All reads and writes go through it, and
// it serializes them, so one Repository per Store.
type Repository struct {
	mu    sync.Mutex
	store Store
	newID func() string
}

func NewRepository(store Store) *Repository {
	return &Repository{
		store: store,
		newID: func() string { return uuid.NewString() },
	}
}

// Init seeds the default global categories if the store is empty and
// returns the current data.
func (r *Repository) Init(ctx context.Context) (Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Load is Init: the first read of an empty store seeds it.
func (r *Repository) Load(ctx context.Context) (Data, error) {
	return r.Init(ctx)
}

func (r *Repository) Save(ctx context.Context, data Data) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, data)
}

// Clear drops the blob. The next read reseeds the defaults.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear guest data: %w", err)
	}
	return nil
}

func (r *Repository) load(ctx context.Context) (Data, error) {
	raw, err := r.store.Get(ctx, StorageKey)
	if errors.Is(err, ErrKeyNotFound) {
		data := Data{Categories: defaultCategories(r.newID)}
		data.normalize()
		return data, r.save(ctx, data)
	}
	if err != nil {
		return Data{}, fmt.Errorf("read guest data: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("decode guest data: %w", err)
	}
	data.normalize()
	return data, nil
}

func (r *Repository) save(ctx context.Context, data Data) error {
	data.normalize()
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode guest data: %w", err)
	}
	if err := r.store.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("write guest data: %w", err)
	}
	return nil
}

// mutate runs fn over the loaded data and persists the result if fn succeeds.
func (r *Repository) mutate(ctx context.Context, fn func(*Data) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&data); err != nil {
		return err
	}
	return r.save(ctx, data)
}

// === Transactions ===

// AddTransaction validates t, assigns an id if it has none and puts it first.
func (r *Repository) AddTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if t.ID == "" {
		t.ID = r.newID()
	}
	err := r.mutate(ctx, func(d *Data) error {
		if err := validateTransaction(*d, t); err != nil {
			return err
		}
		d.Transactions = append([]Transaction{t}, d.Transactions...)
		return nil
	})
	return t, err
}

func (r *Repository) UpdateTransaction(ctx context.Context, t Transaction) error {
	return r.mutate(ctx, func(d *Data) error {
		if err := validateTransaction(*d, t); err != nil {
			return err
		}
		return replace(d.Transactions, t, func(x Transaction) string { return x.ID })
	})
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	return r.mutate(ctx, func(d *Data) error {
		var err error
		d.Transactions, err = remove(d.Transactions, id, func(x Transaction) string { return x.ID })
		return err
	})
}

// === Categories ===

// AddCategory appends a local (non-global) category.
func (r *Repository) AddCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = r.newID()
	}
	if c.Icon == "" {
		c.Icon = domain.DefaultIcon
	}
	c.IsGlobal = false
	err := r.mutate(ctx, func(d *Data) error {
		if err := validateCategory(*d, c); err != nil {
			return err
		}
		d.Categories = append(d.Categories, c)
		return nil
	})
	return c, err
}

// UpdateCategory replaces a category. Deactivating is an update with IsActive false.
func (r *Repository) UpdateCategory(ctx context.Context, c Category) error {
	if c.Icon == "" {
		c.Icon = domain.DefaultIcon
	}
	return r.mutate(ctx, func(d *Data) error {
		if err := validateCategory(*d, c); err != nil {
			return err
		}
		return replace(d.Categories, c, func(x Category) string { return x.ID })
	})
}

// === Assets ===

func (r *Repository) AddAsset(ctx context.Context, a Asset) (Asset, error) {
	if a.ID == "" {
		a.ID = r.newID()
	}
	if err := validateAsset(a); err != nil {
		return a, err
	}
	err := r.mutate(ctx, func(d *Data) error {
		d.Assets = append([]Asset{a}, d.Assets...)
		return nil
	})
	return a, err
}

func (r *Repository) UpdateAsset(ctx context.Context, a Asset) error {
	if err := validateAsset(a); err != nil {
		return err
	}
	return r.mutate(ctx, func(d *Data) error {
		return replace(d.Assets, a, func(x Asset) string { return x.ID })
	})
}

func (r *Repository) DeleteAsset(ctx context.Context, id string) error {
	return r.mutate(ctx, func(d *Data) error {
		var err error
		d.Assets, err = remove(d.Assets, id, func(x Asset) string { return x.ID })
		return err
	})
}

// === Export / Import ===

func (r *Repository) Export(ctx context.Context, w io.Writer) error {
	data, err := r.Load(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Import replaces the stored blob with a previously exported one. Nothing is
// written unless every item in it is valid.
func (r *Repository) Import(ctx context.Context, rd io.Reader) (Data, error) {
	var data Data
	if err := json.NewDecoder(rd).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	data.normalize()
	if err := Validate(data); err != nil {
		return Data{}, err
	}
	return data, r.Save(ctx, data)
}

// Validate checks every item of a blob and that transactions reference known categories.
func Validate(data Data) error {
	var problems []string
	for _, c := range data.Categories {
		if err := validateCategory(Data{}, c); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, t := range data.Transactions {
		if err := validateTransaction(data, t); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, a := range data.Assets {
		if err := validateAsset(a); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func validateTransaction(d Data, t Transaction) error {
	problems := validator.Struct(t)
	switch {
	case !t.Amount.IsPositive():
		problems = withProblem(problems, "amount", "amount must be positive")
	case !domain.FitsPlaces(t.Amount, domain.MoneyPlaces):
		problems = withProblem(problems, "amount", "amount must have at most 2 decimal places")
	}
	if _, ok := d.Category(t.CategoryID); t.CategoryID != "" && len(d.Categories) > 0 && !ok {
		problems = withProblem(problems, "categoryId", "unknown category "+t.CategoryID)
	}
	return invalid("transaction", t.ID, problems)
}

// validateCategory also rejects a second category with the same name.
func validateCategory(d Data, c Category) error {
	problems := validator.Struct(c)
	for _, other := range d.Categories {
		if other.ID != c.ID && strings.EqualFold(other.Name, c.Name) {
			problems = withProblem(problems, "name", "category "+c.Name+" already exists")
			break
		}
	}
	return invalid("category", c.ID, problems)
}

func validateAsset(a Asset) error {
	problems := validator.Struct(a)
	switch {
	case !a.Quantity.IsPositive():
		problems = withProblem(problems, "quantity", "quantity must be positive")
	case !domain.FitsPlaces(a.Quantity, domain.QuantityPlaces):
		problems = withProblem(problems, "quantity", "quantity must have at most 8 decimal places")
	}
	switch {
	case !a.AvgPrice.IsPositive():
		problems = withProblem(problems, "avgPrice", "avgPrice must be positive")
	case !domain.FitsPlaces(a.AvgPrice, domain.MoneyPlaces):
		problems = withProblem(problems, "avgPrice", "avgPrice must have at most 2 decimal places")
	}
	return invalid("asset", a.ID, problems)
}

func withProblem(problems map[string]string, field, msg string) map[string]string {
	if problems == nil {
		problems = make(map[string]string)
	}
	problems[field] = msg
	return problems
}

func invalid(what, id string, problems map[string]string) error {
	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(problems))
	for _, m := range problems {
		msgs = append(msgs, m)
	}
	slices.Sort(msgs)
	return fmt.Errorf("%w: %s %s: %s", ErrInvalid, what, id, strings.Join(msgs, ", "))
}

func replace[T any](items []T, item T, id func(T) string) error {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id(item))
}

func remove[T any](items []T, target string, id func(T) string) ([]T, error) {
	for i := range items {
		if id(items[i]) == target {
			return append(items[:i:i], items[i+1:]...), nil
		}
	}
	return items, fmt.Errorf("%w: %s", ErrNotFound, target)
}

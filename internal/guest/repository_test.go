package guest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"finance-tracker/internal/domain"

	"github.com/shopspring/decimal"
)

func newRepo(t *testing.T) (*Repository, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	r := NewRepository(store)
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return r, store
}

func expense(amount, date, categoryID string) Transaction {
	return Transaction{
		Kind:       domain.Expense,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		CategoryID: categoryID,
	}
}

func TestRepository_InitSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	r, store := newRepo(t)

	data, err := r.Init(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Categories) != 15 {
		t.Fatalf("seeded %d categories, want 15", len(data.Categories))
	}
	for _, c := range data.Categories {
		if !c.IsGlobal || !c.IsActive {
			t.Errorf("default %s: global=%v active=%v", c.Name, c.IsGlobal, c.IsActive)
		}
	}
	if data.Categories[0].Name != "Aluguel" || data.Categories[14].Name != "Outros" {
		t.Errorf("unexpected seed order: %s .. %s", data.Categories[0].Name, data.Categories[14].Name)
	}
	if len(data.Transactions) != 0 || data.Transactions == nil {
		t.Errorf("transactions = %#v, want empty slice", data.Transactions)
	}
	if _, err := store.Get(ctx, StorageKey); err != nil {
		t.Errorf("seed not persisted: %v", err)
	}

	again, err := r.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Categories[0].ID != data.Categories[0].ID {
		t.Error("second read reseeded")
	}
}

func TestRepository_TransactionsArePrepended(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	data, _ := r.Init(ctx)
	catID := data.Categories[5].ID

	first, err := r.AddTransaction(ctx, expense("10", "2024-05-01", catID))
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.AddTransaction(ctx, expense("20", "2024-05-02", catID))
	if err != nil {
		t.Fatal(err)
	}

	data, _ = r.Load(ctx)
	if len(data.Transactions) != 2 || data.Transactions[0].ID != second.ID || data.Transactions[1].ID != first.ID {
		t.Fatalf("order = %+v", data.Transactions)
	}

	second.Amount = decimal.RequireFromString("25.5")
	if err := r.UpdateTransaction(ctx, second); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	data, _ = r.Load(ctx)
	if len(data.Transactions) != 1 || !data.Transactions[0].Amount.Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("after update/delete: %+v", data.Transactions)
	}

	if err := r.DeleteTransaction(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v, want ErrNotFound", err)
	}
}

func TestRepository_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	data, _ := r.Init(ctx)
	catID := data.Categories[0].ID

	tests := []struct {
		name string
		txn  Transaction
	}{
		{"zero amount", expense("0", "2024-05-01", catID)},
		{"negative amount", expense("-3", "2024-05-01", catID)},
		{"bad date", expense("3", "01/05/2024", catID)},
		{"unknown category", expense("3", "2024-05-01", "nope")},
		{"sub-cent amount", expense("0.001", "2024-05-01", catID)},
		{"three decimals", expense("10.005", "2024-05-01", catID)},
		{"bad kind", Transaction{Kind: "GIFT", Amount: decimal.NewFromInt(1), Date: "2024-05-01", CategoryID: catID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.AddTransaction(ctx, tt.txn); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}

	data, _ = r.Load(ctx)
	if len(data.Transactions) != 0 {
		t.Errorf("invalid transactions were stored: %+v", data.Transactions)
	}
}

func TestRepository_Categories(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	c, err := r.AddCategory(ctx, Category{Name: "Pets", Group: domain.GroupOutros, IsActive: true, IsGlobal: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.IsGlobal || c.Icon != domain.DefaultIcon {
		t.Errorf("added category = %+v", c)
	}

	data, _ := r.Load(ctx)
	if last := data.Categories[len(data.Categories)-1]; last.ID != c.ID {
		t.Errorf("category not appended, last = %s", last.Name)
	}

	if _, err := r.AddCategory(ctx, Category{Name: "pets", Group: domain.GroupOutros}); !errors.Is(err, ErrInvalid) {
		t.Errorf("duplicate name: %v", err)
	}
	if _, err := r.AddCategory(ctx, Category{Name: "Vet", Group: "ZOO"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad group: %v", err)
	}

	c.IsActive = false
	if err := r.UpdateCategory(ctx, c); err != nil {
		t.Fatal(err)
	}
	data, _ = r.Load(ctx)
	got, _ := data.Category(c.ID)
	if got.IsActive {
		t.Error("category still active")
	}
}

func TestRepository_Assets(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	a1, err := r.AddAsset(ctx, Asset{SymbolOrName: "PETR4", AssetType: domain.AssetStock,
		Quantity: decimal.NewFromInt(10), AvgPrice: decimal.RequireFromString("30.5")})
	if err != nil {
		t.Fatal(err)
	}
	a2, err := r.AddAsset(ctx, Asset{SymbolOrName: "BTC", AssetType: domain.AssetCrypto,
		Quantity: decimal.RequireFromString("0.1"), AvgPrice: decimal.NewFromInt(300000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddAsset(ctx, Asset{SymbolOrName: "X", AssetType: domain.AssetOther}); !errors.Is(err, ErrInvalid) {
		t.Errorf("zero quantity accepted: %v", err)
	}
	if _, err := r.AddAsset(ctx, Asset{SymbolOrName: "X", AssetType: domain.AssetOther,
		Quantity: decimal.NewFromInt(1), AvgPrice: decimal.RequireFromString("9.999")}); !errors.Is(err, ErrInvalid) {
		t.Errorf("avgPrice beyond cents accepted: %v", err)
	}

	data, _ := r.Load(ctx)
	if len(data.Assets) != 2 || data.Assets[0].ID != a2.ID {
		t.Fatalf("assets = %+v", data.Assets)
	}
	p := data.Portfolio()
	if !p.TotalInvested.Equal(decimal.NewFromInt(30305)) {
		t.Errorf("total invested = %s", p.TotalInvested)
	}

	a1.Quantity = decimal.NewFromInt(20)
	if err := r.UpdateAsset(ctx, a1); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteAsset(ctx, a2.ID); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateAsset(ctx, a2); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of deleted asset: %v", err)
	}
}

func TestRepository_ClearReseeds(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	data, _ := r.Init(ctx)
	if _, err := r.AddTransaction(ctx, expense("1", "2024-01-01", data.Categories[0].ID)); err != nil {
		t.Fatal(err)
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	data, err := r.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Transactions) != 0 || len(data.Categories) != 15 {
		t.Errorf("after clear: %d transactions, %d categories", len(data.Transactions), len(data.Categories))
	}
}

func TestRepository_ExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newRepo(t)
	data, _ := src.Init(ctx)
	if _, err := src.AddTransaction(ctx, expense("12.34", "2024-03-09", data.Categories[2].ID)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	dst, _ := newRepo(t)
	imported, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(imported.Transactions) != 1 || !imported.Transactions[0].Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("imported = %+v", imported.Transactions)
	}
	loaded, _ := dst.Load(ctx)
	if loaded.Categories[2].ID != data.Categories[2].ID {
		t.Error("import did not replace stored data")
	}
}

func TestRepository_ImportAcceptsBrowserBlob(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	blob := `{
		"categories": [{"id": "c1", "name": "Mercado", "group": "ALIMENTACAO", "icon": "cart", "isActive": true, "isGlobal": true}],
		"transactions": [{"id": "t1", "type": "EXPENSE", "amount": 42.5, "date": "2024-06-02", "categoryId": "c1", "note": null}],
		"assets": []
	}`
	data, err := r.Import(ctx, strings.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	if !data.Transactions[0].Amount.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("amount = %s", data.Transactions[0].Amount)
	}

	var out bytes.Buffer
	if err := r.Export(ctx, &out); err != nil {
		t.Fatal(err)
	}
	var exported struct {
		Transactions []map[string]any `json:"transactions"`
	}
	if err := json.Unmarshal(out.Bytes(), &exported); err != nil {
		t.Fatal(err)
	}
	if amount, ok := exported.Transactions[0]["amount"].(float64); !ok || amount != 42.5 {
		t.Errorf("exported amount = %#v, want the number 42.5", exported.Transactions[0]["amount"])
	}

	if _, err := r.Import(ctx, strings.NewReader(`{"transactions": [{"id": "t", "type": "EXPENSE", "amount": -1, "date": "2024-06-02", "categoryId": "c1"}]}`)); !errors.Is(err, ErrInvalid) {
		t.Errorf("invalid blob: %v", err)
	}
	if _, err := r.Import(ctx, strings.NewReader(`not json`)); !errors.Is(err, ErrInvalid) {
		t.Errorf("garbage: %v", err)
	}
}

func TestRepository_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(NewMemoryStore())
	data, err := r.Init(ctx)
	if err != nil {
		t.Fatal(err)
	}
	catID := data.Categories[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.AddTransaction(ctx, expense("1", "2024-01-01", catID)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	data, _ = r.Load(ctx)
	if len(data.Transactions) != 20 {
		t.Errorf("stored %d transactions, want 20", len(data.Transactions))
	}
}

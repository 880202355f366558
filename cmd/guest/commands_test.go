package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/guest"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func newTestApp(t *testing.T, apiURL string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(guest.NewRepository(guest.NewMemoryStore()), &out, apiURL)
	a.now = func() time.Time { return time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC) }
	return a, &out
}

func mustRun(t *testing.T, a *app, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	if err := a.run(context.Background(), args); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestGuest_AddListSummary(t *testing.T) {
	a, out := newTestApp(t, "")

	mustRun(t, a, out, "add", "-type", "income", "-amount", "1000", "-category", "Cursos")
	mustRun(t, a, out, "add", "-amount", "45,90", "-category", "mercado", "-note", "feira")
	mustRun(t, a, out, "add", "-amount", "10", "-date", "2024-08-31", "-category", "Luz")

	list := mustRun(t, a, out, "list", "-month", "2024-09", "-sort", "amount_asc")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	if len(lines) != 3 {
		t.Fatalf("list output:\n%s", list)
	}
	if !strings.Contains(lines[1], "45.90") || !strings.Contains(lines[1], "Mercado") || !strings.Contains(lines[1], "feira") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "1000.00") {
		t.Errorf("second row = %q", lines[2])
	}

	expenses := mustRun(t, a, out, "list", "-type", "EXPENSE")
	if strings.Count(expenses, "EXPENSE") != 2 {
		t.Errorf("expense filter:\n%s", expenses)
	}

	summary := mustRun(t, a, out, "summary")
	for _, want := range []string{"2024-09", "income  1000.00", "expense 45.90", "balance 954.10", "Cursos"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "Luz") {
		t.Errorf("august expense leaked into september:\n%s", summary)
	}
}

func TestGuest_AddRejectsBadInput(t *testing.T) {
	a, _ := newTestApp(t, "")
	ctx := context.Background()

	if err := a.run(ctx, []string{"add", "-amount", "0", "-category", "Luz"}); !errors.Is(err, guest.ErrInvalid) {
		t.Errorf("zero amount: %v", err)
	}
	if err := a.run(ctx, []string{"add", "-amount", "5", "-category", "Nope"}); err == nil {
		t.Error("unknown category accepted")
	}
	if err := a.run(ctx, []string{"list", "-month", "2024-9"}); err == nil {
		t.Error("bad month accepted")
	}
	if err := a.run(ctx, []string{"frobnicate"}); err == nil {
		t.Error("unknown command accepted")
	}
}

func TestGuest_EditAndDelete(t *testing.T) {
	a, out := newTestApp(t, "")
	id := strings.TrimSpace(mustRun(t, a, out, "add", "-amount", "20", "-category", "Luz"))

	mustRun(t, a, out, "edit", id, "-amount", "25.5", "-note", "conta")
	list := mustRun(t, a, out, "list")
	if !strings.Contains(list, "25.50") || !strings.Contains(list, "conta") {
		t.Errorf("edit not applied:\n%s", list)
	}

	mustRun(t, a, out, "delete", id)
	list = mustRun(t, a, out, "list")
	if strings.Contains(list, "25.50") {
		t.Errorf("delete not applied:\n%s", list)
	}

	if err := a.run(context.Background(), []string{"delete", id}); !errors.Is(err, guest.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestGuest_Categories(t *testing.T) {
	a, out := newTestApp(t, "")

	id := strings.TrimSpace(mustRun(t, a, out, "category-add", "-name", "Pets", "-group", "outros"))
	cats := mustRun(t, a, out, "categories")
	if !strings.Contains(cats, "Pets") || strings.Count(cats, "\n") != 17 {
		t.Fatalf("categories:\n%s", cats)
	}

	mustRun(t, a, out, "category-off", id)
	data, err := a.repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	c, ok := data.Category(id)
	if !ok || c.IsActive || c.IsGlobal {
		t.Errorf("category after deactivate = %+v", c)
	}
}

func TestGuest_Assets(t *testing.T) {
	a, out := newTestApp(t, "")
	mustRun(t, a, out, "asset-add", "-name", "PETR4", "-type", "stock", "-qty", "10", "-price", "32.5")
	mustRun(t, a, out, "asset-add", "-name", "BTC", "-type", "CRYPTO", "-qty", "0.01", "-price", "300000")

	got := mustRun(t, a, out, "assets")
	for _, want := range []string{"PETR4", "325.00", "3000.00", "total invested 3325.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("assets missing %q:\n%s", want, got)
		}
	}
}

func TestGuest_ExportImport(t *testing.T) {
	a, out := newTestApp(t, "")
	mustRun(t, a, out, "add", "-amount", "12", "-category", "Água")

	dir := t.TempDir()
	blob := filepath.Join(dir, "guest.json")
	mustRun(t, a, out, "export", "-o", blob)

	csvOut := mustRun(t, a, out, "export", "-format", "csv")
	if !strings.Contains(csvOut, "2024-09-15,EXPENSE,Água,CASA,12.00") {
		t.Errorf("csv:\n%s", csvOut)
	}

	xlsx := filepath.Join(dir, "guest.xlsx")
	mustRun(t, a, out, "export", "-format", "xlsx", "-o", xlsx)
	if info, err := os.Stat(xlsx); err != nil || info.Size() == 0 {
		t.Errorf("xlsx not written: %v", err)
	}

	mustRun(t, a, out, "clear")
	if list := mustRun(t, a, out, "list"); strings.Contains(list, "12.00") {
		t.Fatalf("clear kept data:\n%s", list)
	}

	got := mustRun(t, a, out, "import", blob)
	if !strings.Contains(got, "1 transactions") {
		t.Errorf("import output = %q", got)
	}
	if list := mustRun(t, a, out, "list"); !strings.Contains(list, "12.00") {
		t.Errorf("import lost the transaction:\n%s", list)
	}
}

func TestGuest_ExportXLSXWithoutMonth(t *testing.T) {
	a, out := newTestApp(t, "")
	mustRun(t, a, out, "add", "-amount", "10", "-date", "2024-08-31", "-category", "Luz")
	mustRun(t, a, out, "add", "-amount", "5.50", "-category", "Luz")

	path := filepath.Join(t.TempDir(), "all.xlsx")
	mustRun(t, a, out, "export", "-format", "xlsx", "-o", path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("transaction rows = %d, want header plus 2", len(rows))
	}
	expense, err := f.GetCellValue("Summary", "B3", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if expense != "15.5" {
		t.Errorf("summary expense = %s, want both months", expense)
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseInto(t *testing.T) {
	boom := errors.New("disk full")

	var err error
	closeInto(&err, failingCloser{boom}, "out.json")
	if !errors.Is(err, boom) {
		t.Errorf("close error dropped: %v", err)
	}

	first := errors.New("write failed")
	err = first
	closeInto(&err, failingCloser{boom}, "out.json")
	if err != first {
		t.Errorf("earlier error replaced: %v", err)
	}

	err = nil
	closeInto(&err, failingCloser{}, "out.json")
	if err != nil {
		t.Errorf("clean close: %v", err)
	}
}

// fakeAPI serves the handful of endpoints a sync touches.
type fakeAPI struct {
	mu           sync.Mutex
	categories   []domain.Category
	transactions []map[string]string
	assets       int
}

func (f *fakeAPI) counts() (categories int, transactions []map[string]string, assets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.categories), append([]map[string]string(nil), f.transactions...), f.assets
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.categories)
	})
	mux.HandleFunc("POST /api/categories", func(w http.ResponseWriter, r *http.Request) {
		var in domain.CategoryInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		c := domain.Category{ID: uuid.New(), Name: in.Name, Group: in.Group, Icon: in.Icon, IsActive: true}
		f.categories = append(f.categories, c)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("POST /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.transactions = append(f.transactions, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": uuid.New()})
	})
	mux.HandleFunc("POST /api/investments/assets", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.assets++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": uuid.New()})
	})
	return mux
}

func TestGuest_Sync(t *testing.T) {
	market := domain.Category{ID: uuid.New(), Name: "Mercado", Group: domain.GroupAlimentacao, IsActive: true}
	api := &fakeAPI{categories: []domain.Category{market}}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	a, out := newTestApp(t, srv.URL)
	mustRun(t, a, out, "category-add", "-name", "Pets")
	mustRun(t, a, out, "add", "-amount", "30", "-category", "Mercado")
	mustRun(t, a, out, "add", "-amount", "80", "-category", "Pets")
	mustRun(t, a, out, "asset-add", "-name", "IVVB11", "-type", "FII", "-qty", "1", "-price", "300")

	report := mustRun(t, a, out, "sync", "-username", "alice", "-password", "secret1")
	if !strings.Contains(report, "categories: 1 created") || !strings.Contains(report, "transactions: 2 created, 0 skipped") {
		t.Errorf("report:\n%s", report)
	}
	_, txns, assets := api.counts()
	if len(txns) != 2 || assets != 1 {
		t.Fatalf("remote got %d transactions, %d assets", len(txns), assets)
	}
	if txns[1]["categoryId"] != market.ID.String() {
		t.Errorf("Mercado transaction filed under %s", txns[1]["categoryId"])
	}
	if txns[0]["date"] != "2024-09-15T00:00:00Z" {
		t.Errorf("date sent as %q", txns[0]["date"])
	}

	mustRun(t, a, out, "sync", "-username", "alice", "-password", "secret1")
	if n, _, _ := api.counts(); n != 2 {
		t.Errorf("second sync duplicated categories: %d", n)
	}

	// local data is left alone
	data, err := a.repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Transactions) != 2 {
		t.Errorf("local transactions = %d", len(data.Transactions))
	}
}

func TestGuest_SyncNeedsCredentials(t *testing.T) {
	a, _ := newTestApp(t, "http://127.0.0.1:0")
	ctx := context.Background()
	if err := a.run(ctx, []string{"sync", "-username", "alice"}); err == nil {
		t.Error("missing password accepted")
	}
	if err := a.run(ctx, []string{"sync", "-username", "a", "-password", "b", "-fallback", "random"}); err == nil {
		t.Error("unknown fallback accepted")
	}
}

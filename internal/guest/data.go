// internal/guest/data.go
package guest

import (
	"encoding/json"
	"fmt"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The blob layout matches what the web client keeps in localStorage, so an
// exported browser blob can be imported here and uploaded through /api/sync.

type Category struct {
	ID       string       `json:"id"`
	Name     string       `json:"name" validate:"required,notblank"`
	Group    domain.Group `json:"group" validate:"categorygroup"`
	Icon     string       `json:"icon"`
	IsActive bool         `json:"isActive"`
	IsGlobal bool         `json:"isGlobal"`
}

type Transaction struct {
	ID         string          `json:"id"`
	Kind       domain.Kind     `json:"type" validate:"txkind"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID string          `json:"categoryId" validate:"required"`
	Note       string          `json:"note,omitempty"`
}

type Asset struct {
	ID           string           `json:"id"`
	SymbolOrName string           `json:"symbolOrName" validate:"required,notblank"`
	AssetType    domain.AssetType `json:"assetType" validate:"assettype"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AvgPrice     decimal.Decimal  `json:"avgPrice"`
}

type Data struct {
	Categories   []Category    `json:"categories"`
	Transactions []Transaction `json:"transactions"`
	Assets       []Asset       `json:"assets"`
}

// Amounts are written as JSON numbers, the way the web client stores them.

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(t), json.Number(t.Amount.String())})
}

func (a Asset) MarshalJSON() ([]byte, error) {
	type plain Asset
	return json.Marshal(struct {
		plain
		Quantity json.Number `json:"quantity"`
		AvgPrice json.Number `json:"avgPrice"`
	}{plain(a), json.Number(a.Quantity.String()), json.Number(a.AvgPrice.String())})
}

func (d *Data) normalize() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Assets == nil {
		d.Assets = []Asset{}
	}
}

// ID maps a guest id onto a UUID. Ids minted by this package are already
// UUIDs; anything else gets a stable name-based UUID.
func ID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("guest:"+s))
}

func (c Category) Domain() domain.Category {
	return domain.Category{
		ID:       ID(c.ID),
		Name:     c.Name,
		Group:    c.Group,
		Icon:     c.Icon,
		IsActive: c.IsActive,
	}
}

// OccurredOn parses the transaction's calendar date as UTC midnight.
func (t Transaction) OccurredOn() (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("transaction %s: bad date %q", t.ID, t.Date)
	}
	return d, nil
}

func (t Transaction) Domain() (domain.Transaction, error) {
	on, err := t.OccurredOn()
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:         ID(t.ID),
		Kind:       t.Kind,
		Amount:     t.Amount,
		OccurredOn: on,
		CategoryID: ID(t.CategoryID),
		Note:       t.Note,
	}, nil
}

func (a Asset) Domain() domain.Asset {
	return domain.Asset{
		ID:           ID(a.ID),
		SymbolOrName: a.SymbolOrName,
		AssetType:    a.AssetType,
		Quantity:     a.Quantity,
		AvgPrice:     a.AvgPrice,
	}
}

func (d Data) domainTransactions() ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(d.Transactions))
	for _, t := range d.Transactions {
		dt, err := t.Domain()
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}

func (d Data) domainCategories() []domain.Category {
	out := make([]domain.Category, 0, len(d.Categories))
	for _, c := range d.Categories {
		out = append(out, c.Domain())
	}
	return out
}

// Category looks a category up by its guest id.
func (d Data) Category(id string) (Category, bool) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Filtered runs the same filter and sort the server applies to its listing.
func (d Data) Filtered(q ledger.Query) ([]domain.Transaction, error) {
	txns, err := d.domainTransactions()
	if err != nil {
		return nil, err
	}
	return ledger.Filter(txns, q), nil
}

// Summary aggregates one month of guest transactions.
func (d Data) Summary(month string) (domain.Summary, error) {
	txns, err := d.Filtered(ledger.Query{Month: month})
	if err != nil {
		return domain.Summary{}, err
	}
	return ledger.Summarize(month, txns, d.domainCategories()), nil
}

func (d Data) Portfolio() domain.Portfolio {
	assets := make([]domain.Asset, 0, len(d.Assets))
	for _, a := range d.Assets {
		assets = append(assets, a.Domain())
	}
	return ledger.SummarizePortfolio(assets)
}

func defaultCategories(newID func() string) []Category {
	seed := []struct {
		name  string
		group domain.Group
		icon  string
	}{
		{"Aluguel", domain.GroupCasa, "home"},
		{"Condomínio", domain.GroupCasa, "building"},
		{"Luz", domain.GroupCasa, "bolt"},
		{"Água", domain.GroupCasa, "droplet"},
		{"Internet", domain.GroupCasa, "wifi"},
		{"Mercado", domain.GroupAlimentacao, "cart"},
		{"Restaurantes", domain.GroupAlimentacao, "fork"},
		{"Combustível", domain.GroupTransporte, "fuel"},
		{"Manutenção", domain.GroupTransporte, "wrench"},
		{"Escola", domain.GroupCriancas, "book"},
		{"Cursos", domain.GroupProfissional, "briefcase"},
		{"Streaming", domain.GroupAssinaturas, "play"},
		{"Academia", domain.GroupSaude, "heart"},
		{"Lazer", domain.GroupLazer, "smile"},
		{"Outros", domain.GroupOutros, "dots"},
	}
	out := make([]Category, 0, len(seed))
	for _, s := range seed {
		out = append(out, Category{
			ID:       newID(),
			Name:     s.name,
			Group:    s.group,
			Icon:     s.icon,
			IsActive: true,
			IsGlobal: true,
		})
	}
	return out
}

// internal/domain/models.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type Kind string

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Group is one of the fixed household-budget groups a category belongs to.
type Group string

const (
	GroupCasa         Group = "CASA"
	GroupAlimentacao  Group = "ALIMENTACAO"
	GroupTransporte   Group = "TRANSPORTE_CARRO"
	GroupCriancas     Group = "CRIANCAS_ESCOLA"
	GroupLazer        Group = "LAZER_ENTRETENIMENTO"
	GroupAssinaturas  Group = "ASSINATURAS"
	GroupProfissional Group = "PROFISSIONAL"
	GroupSaude        Group = "SAUDE"
	GroupOutros       Group = "OUTROS"
)

var Groups = []Group{
	GroupCasa, GroupAlimentacao, GroupTransporte, GroupCriancas, GroupLazer,
	GroupAssinaturas, GroupProfissional, GroupSaude, GroupOutros,
}

func (g Group) Valid() bool {
	for _, known := range Groups {
		if g == known {
			return true
		}
	}
	return false
}

type AssetType string

const (
	AssetStock       AssetType = "STOCK"
	AssetFII         AssetType = "FII"
	AssetCrypto      AssetType = "CRYPTO"
	AssetFixedIncome AssetType = "FIXED_INCOME"
	AssetOther       AssetType = "OTHER"
)

var AssetTypes = []AssetType{AssetStock, AssetFII, AssetCrypto, AssetFixedIncome, AssetOther}

func (a AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if a == known {
			return true
		}
	}
	return false
}

const DefaultIcon = "tag"

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Category with a nil UserID is a global (seeded) category.
type Category struct {
	ID       uuid.UUID  `json:"id"`
	UserID   *uuid.UUID `json:"userId"`
	Name     string     `json:"name"`
	Group    Group      `json:"group"`
	Icon     string     `json:"icon"`
	IsActive bool       `json:"isActive"`
}

func (c Category) Global() bool {
	return c.UserID == nil
}

// VisibleTo reports whether the category may be referenced by the user's transactions.
func (c Category) VisibleTo(userID uuid.UUID) bool {
	return c.UserID == nil || *c.UserID == userID
}

type CategoryInput struct {
	Name     string `json:"name"`
	Group    Group  `json:"group"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"isActive"`
}

// Transaction amounts are always positive; the sign lives in Kind.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Kind       Kind            `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn time.Time       `json:"date"`
	CategoryID uuid.UUID       `json:"categoryId"`
	Note       string          `json:"note,omitempty"`
	Category   *Category       `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Day returns the ISO calendar date (YYYY-MM-DD) the transaction occurred on.
func (t Transaction) Day() string {
	return t.OccurredOn.Format(DateLayout)
}

type TransactionInput struct {
	Kind       Kind            `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn time.Time       `json:"date"`
	CategoryID uuid.UUID       `json:"categoryId"`
	Note       string          `json:"note,omitempty"`
}

type Asset struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	SymbolOrName string          `json:"symbolOrName"`
	AssetType    AssetType       `json:"assetType"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Decimal places the database keeps for money and asset quantities.
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 8
)

// FitsPlaces reports whether d is exact at the given number of decimal places.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// MarketValue is derived on read and never stored.
func (a Asset) MarketValue() decimal.Decimal {
	return a.Quantity.Mul(a.AvgPrice)
}

type AssetInput struct {
	SymbolOrName string          `json:"symbolOrName"`
	AssetType    AssetType       `json:"assetType"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
}

// === Summary ===

type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type CategoryTotal struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Group        Group           `json:"group"`
}

type DayTotal struct {
	Date         string          `json:"date"`
	IncomeTotal  decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
}

type Summary struct {
	Month      string          `json:"month"`
	Totals     Totals          `json:"totals"`
	ByCategory []CategoryTotal `json:"byCategory"`
	Series     []DayTotal      `json:"series"`
}

// === Portfolio ===

type AllocationSlice struct {
	AssetType AssetType       `json:"type"`
	Total     decimal.Decimal `json:"total"`
}

type Portfolio struct {
	TotalInvested decimal.Decimal   `json:"totalInvested"`
	ByType        []AllocationSlice `json:"byType"`
}

// internal/handler/investment.go
package handler

import (
	"net/http"
	"strings"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InvestmentHandler struct {
	store storage.AssetStorage
}

func NewInvestmentHandler(store storage.AssetStorage) *InvestmentHandler {
	return &InvestmentHandler{store: store}
}

type assetRequest struct {
	SymbolOrName string           `json:"symbolOrName" validate:"required,notblank,max=64"`
	AssetType    domain.AssetType `json:"assetType" validate:"assettype"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AvgPrice     decimal.Decimal  `json:"avgPrice"`
}

func (r *assetRequest) check(problems map[string]string) {
	switch {
	case !r.Quantity.IsPositive():
		problems["quantity"] = "quantity must be positive"
	case !domain.FitsPlaces(r.Quantity, domain.QuantityPlaces):
		problems["quantity"] = "quantity must have at most 8 decimal places"
	}
	switch {
	case !r.AvgPrice.IsPositive():
		problems["avgPrice"] = "avgPrice must be positive"
	case !domain.FitsPlaces(r.AvgPrice, domain.MoneyPlaces):
		problems["avgPrice"] = "avgPrice must have at most 2 decimal places"
	}
}

func (r assetRequest) input() domain.AssetInput {
	return domain.AssetInput{
		SymbolOrName: strings.TrimSpace(r.SymbolOrName),
		AssetType:    r.AssetType,
		Quantity:     r.Quantity,
		AvgPrice:     r.AvgPrice,
	}
}

type assetResponse struct {
	domain.Asset
	MarketValue decimal.Decimal `json:"marketValue"`
}

func newAssetResponse(a domain.Asset) assetResponse {
	return assetResponse{Asset: a, MarketValue: a.MarketValue()}
}

func (h *InvestmentHandler) List(c *gin.Context) {
	assets, err := h.store.ListAssets(c.Request.Context(), userID(c))
	if err != nil {
		storageError(c, err, "Assets")
		return
	}
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, newAssetResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// Summary returns the total invested and its split by asset type.
func (h *InvestmentHandler) Summary(c *gin.Context) {
	assets, err := h.store.ListAssets(c.Request.Context(), userID(c))
	if err != nil {
		storageError(c, err, "Assets")
		return
	}
	c.JSON(http.StatusOK, ledger.SummarizePortfolio(assets))
}

func (h *InvestmentHandler) Create(c *gin.Context) {
	var req assetRequest
	if !bindJSON(c, &req, req.check) {
		return
	}
	a, err := h.store.CreateAsset(c.Request.Context(), userID(c), req.input())
	if err != nil {
		storageError(c, err, "Asset")
		return
	}
	c.JSON(http.StatusCreated, newAssetResponse(a))
}

func (h *InvestmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Asset")
	if !ok {
		return
	}
	var req assetRequest
	if !bindJSON(c, &req, req.check) {
		return
	}
	a, err := h.store.UpdateAsset(c.Request.Context(), userID(c), id, req.input())
	if err != nil {
		storageError(c, err, "Asset")
		return
	}
	c.JSON(http.StatusOK, newAssetResponse(a))
}

func (h *InvestmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Asset")
	if !ok {
		return
	}
	if err := h.store.DeleteAsset(c.Request.Context(), userID(c), id); err != nil {
		storageError(c, err, "Asset")
		return
	}
	c.Status(http.StatusNoContent)
}

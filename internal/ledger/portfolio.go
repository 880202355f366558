package ledger

import (
	"finance-tracker/internal/domain"

	"github.com/shopspring/decimal"
)

// SummarizePortfolio totals the market value of the assets and breaks it down
// by asset type, in order of first appearance.
func SummarizePortfolio(assets []domain.Asset) domain.Portfolio {
	total := decimal.Zero
	slices := make([]domain.AllocationSlice, 0)
	idx := make(map[domain.AssetType]int)

	for _, a := range assets {
		v := a.MarketValue()
		total = total.Add(v)
		if i, ok := idx[a.AssetType]; ok {
			slices[i].Total = slices[i].Total.Add(v)
			continue
		}
		idx[a.AssetType] = len(slices)
		slices = append(slices, domain.AllocationSlice{AssetType: a.AssetType, Total: v})
	}

	return domain.Portfolio{TotalInvested: total, ByType: slices}
}

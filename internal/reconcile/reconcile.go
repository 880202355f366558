// internal/reconcile/reconcile.go
package reconcile

//go:generate mockgen -source=reconcile.go -destination=mocks/mock_remote.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/guest"
)

// Remote is the account side of a sync.
type Remote interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error)
	CreateTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error)
	CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error)
}

// Fallback decides what happens to a transaction whose category has no
// remote match by name.
type Fallback string

const (
	// FallbackCreate creates the missing category remotely from the local one.
	FallbackCreate Fallback = "create"
	// FallbackSkip leaves the transaction out and reports a conflict.
	FallbackSkip Fallback = "skip"
	// FallbackFirst files the transaction under the first remote category.
	FallbackFirst Fallback = "first"
)

func ParseFallback(s string) (Fallback, error) {
	switch f := Fallback(s); f {
	case FallbackCreate, FallbackSkip, FallbackFirst:
		return f, nil
	case "":
		return FallbackCreate, nil
	default:
		return "", fmt.Errorf("unknown fallback %q", s)
	}
}

type Options struct {
	Fallback Fallback
	Logger   *slog.Logger
}

// Conflict is a local transaction that was not uploaded.
type Conflict struct {
	TransactionID string `json:"transactionId"`
	Category      string `json:"category,omitempty"`
	Reason        string `json:"reason"`
}

type Report struct {
	CategoriesCreated   int        `json:"categoriesCreated"`
	CategoriesMatched   int        `json:"categoriesMatched"`
	TransactionsCreated int        `json:"transactionsCreated"`
	TransactionsSkipped int        `json:"transactionsSkipped"`
	AssetsCreated       int        `json:"assetsCreated"`
	Conflicts           []Conflict `json:"conflicts"`
}

func (r *Report) conflict(c Conflict) {
	r.TransactionsSkipped++
	r.Conflicts = append(r.Conflicts, c)
}

// Sync uploads local guest data to remote, one call at a time in order.
// Local categories whose name already exists remotely are not created again,
// so running Sync twice creates no duplicate categories. The first failed
// remote call stops the sync; the report then holds what was done before it.
// Local data is never modified.
func Sync(ctx context.Context, local guest.Data, remote Remote, opts Options) (Report, error) {
	if opts.Fallback == "" {
		opts.Fallback = FallbackCreate
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	report := Report{Conflicts: []Conflict{}}

	existing, err := remote.ListCategories(ctx)
	if err != nil {
		return report, fmt.Errorf("list remote categories: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[c.Name] = true
	}

	for _, c := range local.Categories {
		if c.IsGlobal {
			continue
		}
		if names[c.Name] {
			report.CategoriesMatched++
			continue
		}
		if _, err := remote.CreateCategory(ctx, categoryInput(c)); err != nil {
			return report, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		names[c.Name] = true
		report.CategoriesCreated++
	}

	remoteCats, err := remote.ListCategories(ctx)
	if err != nil {
		return report, fmt.Errorf("list remote categories: %w", err)
	}

	for _, t := range local.Transactions {
		if len(remoteCats) == 0 {
			report.conflict(Conflict{TransactionID: t.ID, Reason: "no remote categories"})
			continue
		}

		occurredOn, err := t.OccurredOn()
		if err != nil {
			report.conflict(Conflict{TransactionID: t.ID, Reason: err.Error()})
			continue
		}

		var target *domain.Category
		localCat, known := local.Category(t.CategoryID)
		if known {
			target = byName(remoteCats, localCat.Name)
		}

		if target == nil {
			switch {
			case opts.Fallback == FallbackFirst:
				target = &remoteCats[0]
			case !known:
				report.conflict(Conflict{TransactionID: t.ID, Reason: "unknown local category " + t.CategoryID})
				continue
			case opts.Fallback == FallbackSkip:
				report.conflict(Conflict{TransactionID: t.ID, Category: localCat.Name, Reason: "no remote category with this name"})
				continue
			default:
				created, err := remote.CreateCategory(ctx, categoryInput(localCat))
				if err != nil {
					return report, fmt.Errorf("create category %q: %w", localCat.Name, err)
				}
				report.CategoriesCreated++
				remoteCats = append(remoteCats, created)
				target = &remoteCats[len(remoteCats)-1]
			}
		}

		_, err = remote.CreateTransaction(ctx, domain.TransactionInput{
			Kind:       t.Kind,
			Amount:     t.Amount,
			OccurredOn: occurredOn,
			CategoryID: target.ID,
			Note:       t.Note,
		})
		if err != nil {
			return report, fmt.Errorf("create transaction %s: %w", t.ID, err)
		}
		report.TransactionsCreated++
		log.Debug("transaction synced", "local_id", t.ID, "category", target.Name)
	}

	for _, a := range local.Assets {
		_, err := remote.CreateAsset(ctx, domain.AssetInput{
			SymbolOrName: a.SymbolOrName,
			AssetType:    a.AssetType,
			Quantity:     a.Quantity,
			AvgPrice:     a.AvgPrice,
		})
		if err != nil {
			return report, fmt.Errorf("create asset %q: %w", a.SymbolOrName, err)
		}
		report.AssetsCreated++
	}

	log.Info("guest data synced",
		"categories_created", report.CategoriesCreated,
		"transactions_created", report.TransactionsCreated,
		"transactions_skipped", report.TransactionsSkipped,
		"assets_created", report.AssetsCreated)
	return report, nil
}

func categoryInput(c guest.Category) domain.CategoryInput {
	icon := c.Icon
	if icon == "" {
		icon = domain.DefaultIcon
	}
	return domain.CategoryInput{Name: c.Name, Group: c.Group, Icon: icon, IsActive: c.IsActive}
}

func byName(cats []domain.Category, name string) *domain.Category {
	for i := range cats {
		if cats[i].Name == name {
			return &cats[i]
		}
	}
	return nil
}

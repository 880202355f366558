package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var errNoRows = pgx.ErrNoRows

const assetColumns = `id, user_id, symbol_or_name, asset_type, quantity, avg_price, created_at`

func scanAsset(row rowScanner) (domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(&a.ID, &a.UserID, &a.SymbolOrName, &a.AssetType, &a.Quantity, &a.AvgPrice, &a.CreatedAt)
	return a, err
}

func (s *Storage) ListAssets(ctx context.Context, userID uuid.UUID) ([]domain.Asset, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+assetColumns+` FROM investment_assets
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *Storage) CreateAsset(ctx context.Context, userID uuid.UUID, in domain.AssetInput) (domain.Asset, error) {
	a, err := scanAsset(s.db.QueryRow(ctx, `
		INSERT INTO investment_assets (user_id, symbol_or_name, asset_type, quantity, avg_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+assetColumns,
		userID, in.SymbolOrName, in.AssetType, in.Quantity, in.AvgPrice))
	return a, translate(err, "create asset")
}

func (s *Storage) UpdateAsset(ctx context.Context, userID, id uuid.UUID, in domain.AssetInput) (domain.Asset, error) {
	a, err := scanAsset(s.db.QueryRow(ctx, `
		UPDATE investment_assets
		SET symbol_or_name = $3, asset_type = $4, quantity = $5, avg_price = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+assetColumns,
		id, userID, in.SymbolOrName, in.AssetType, in.Quantity, in.AvgPrice))
	return a, translate(err, "update asset")
}

func (s *Storage) DeleteAsset(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM investment_assets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, "delete asset")
	}
	return nil
}

package catalog

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/catalog"
	catalogRepo "marketplace/internal/domain/repositories/catalog"

	"marketplace/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const assetColumns = `id, media_category, folder_id, title, base_price, discount_price, preview_url, download_url, qr_payload, created_at, updated_at`

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) catalogRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts an asset. An empty ID is generated by the database.
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	now := time.Now()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = now
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, media_category, folder_id, title, base_price, discount_price,
		                preview_url, download_url, qr_payload, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.ID,
		asset.MediaCategory,
		asset.ParentID,
		asset.Title,
		asset.BasePrice,
		asset.DiscountPrice,
		asset.PreviewURL,
		asset.DownloadURL,
		asset.QRPayload,
		asset.CreatedAt,
		asset.UpdatedAt,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		if postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset id %q: %w", id, domain.ErrValidation)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return asset, nil
}

// GetByIDs retrieves the assets that exist among ids
func (r *PostgresAssetRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Asset, error) {
	if len(ids) == 0 {
		return []models.Asset{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1)`, assetColumns, r.tables.Assets)
	return r.queryAssets(ctx, "get assets by ids", query, ids)
}

// ListByFolder lists the assets directly inside a folder
func (r *PostgresAssetRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1
		ORDER BY title ASC, id ASC
	`, assetColumns, r.tables.Assets)
	return r.queryAssets(ctx, "list assets by folder", query, folderID)
}

// ListByCategory retrieves all assets of a category
func (r *PostgresAssetRepository) ListByCategory(ctx context.Context, category models.MediaCategory) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE media_category = $1
		ORDER BY title ASC, id ASC
	`, assetColumns, r.tables.Assets)
	return r.queryAssets(ctx, "list assets by category", query, category)
}

func (r *PostgresAssetRepository) queryAssets(ctx context.Context, op, query string, args ...interface{}) ([]models.Asset, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return assets, nil
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var asset models.Asset
	err := row.Scan(
		&asset.ID,
		&asset.MediaCategory,
		&asset.ParentID,
		&asset.Title,
		&asset.BasePrice,
		&asset.DiscountPrice,
		&asset.PreviewURL,
		&asset.DownloadURL,
		&asset.QRPayload,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

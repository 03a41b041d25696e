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

// maxAncestorDepth bounds the recursive walk so a corrupted parent cycle terminates
const maxAncestorDepth = 64

const folderColumns = `id, media_category, parent_id, name, is_purchasable, base_price, discount_price, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) catalogRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a folder. An empty ID is generated by the database.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	if folder.UpdatedAt.IsZero() {
		folder.UpdatedAt = now
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, media_category, parent_id, name, is_purchasable, base_price, discount_price, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.MediaCategory,
		folder.ParentID,
		folder.Name,
		folder.IsPurchasable,
		folder.BasePrice,
		folder.DiscountPrice,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		if postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("folder id %q: %w", id, domain.ErrValidation)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByIDs retrieves the folders that exist among ids
func (r *PostgresFolderRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Folder, error) {
	if len(ids) == 0 {
		return []models.Folder{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1)`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, "get folders by ids", query, ids)
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, folderID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1
		ORDER BY name ASC, id ASC
	`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, "list folder children", query, folderID)
}

// ListByCategory retrieves all folders in a category (flat list)
func (r *PostgresFolderRepository) ListByCategory(ctx context.Context, category models.MediaCategory) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE media_category = $1
		ORDER BY name ASC, id ASC
	`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, "list folders by category", query, category)
}

// GetAncestors walks parent links with a recursive CTE. The join drops out
// at a parent that no longer exists, so orphaned subtrees end there.
func (r *PostgresFolderRepository) GetAncestors(ctx context.Context, id string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT %[1]s, 0 AS depth, ARRAY[id] AS visited
			FROM %[2]s
			WHERE id = $1
			UNION ALL
			SELECT f.id, f.media_category, f.parent_id, f.name, f.is_purchasable, f.base_price,
			       f.discount_price, f.created_at, f.updated_at, c.depth + 1, c.visited || f.id
			FROM %[2]s f
			JOIN chain c ON f.id = c.parent_id
			WHERE NOT f.id = ANY(c.visited) AND c.depth < $2
		)
		SELECT %[1]s FROM chain ORDER BY depth ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "get folder ancestors", query, id, maxAncestorDepth)
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, op, query string, args ...interface{}) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.MediaCategory,
		&folder.ParentID,
		&folder.Name,
		&folder.IsPurchasable,
		&folder.BasePrice,
		&folder.DiscountPrice,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

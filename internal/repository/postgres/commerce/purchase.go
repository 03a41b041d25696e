package commerce

import (
	"context"
	"fmt"
	"log/slog"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/commerce"
	commerceRepo "marketplace/internal/domain/repositories/commerce"

	"marketplace/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `kind, target_id, media_category, price_paid, title, preview_url, download_url, qr_payload, covered_leaf_ids`

// PostgresPurchaseRepository implements the PurchaseRepository interface.
// Rows are only ever inserted; there is no update path.
type PostgresPurchaseRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(config *postgres.RepositoryConfig) commerceRepo.PurchaseRepository {
	return &PostgresPurchaseRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts the purchase header and its items. Callers run it inside
// TransactionManager.ExecTx so header and items commit together.
func (r *PostgresPurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, payment_ref, total_amount, discount_applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Purchases)

	_, err := executor.Exec(ctx, query,
		purchase.ID,
		purchase.UserID,
		purchase.PaymentRef,
		purchase.TotalAmount,
		purchase.DiscountApplied,
		purchase.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgConstraint(err, r.tables.PaymentRefConstraint()) {
			return fmt.Errorf("payment reference %q: %w", purchase.PaymentRef, domain.ErrConflict)
		}
		return fmt.Errorf("create purchase: %w", err)
	}

	itemQuery := fmt.Sprintf(`
		INSERT INTO %s (purchase_id, position, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.PurchaseItems, itemColumns)

	for i, item := range purchase.Items {
		covered := item.CoveredLeafIDs
		if covered == nil {
			covered = []string{}
		}
		_, err := executor.Exec(ctx, itemQuery,
			purchase.ID,
			i,
			item.Kind,
			item.TargetID,
			item.MediaCategory,
			item.PricePaid,
			item.Title,
			item.PreviewURL,
			item.DownloadURL,
			item.QRPayload,
			covered,
		)
		if err != nil {
			return fmt.Errorf("create purchase item %d: %w", i, err)
		}
	}

	return nil
}

// GetByID retrieves a purchase owned by userID
func (r *PostgresPurchaseRepository) GetByID(ctx context.Context, id, userID string) (*models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, payment_ref, total_amount, discount_applied, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Purchases)

	return r.getOne(ctx, query, fmt.Sprintf("purchase %s", id), id, userID)
}

// GetByPaymentRef retrieves the purchase bound to a payment reference
func (r *PostgresPurchaseRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, payment_ref, total_amount, discount_applied, created_at
		FROM %s
		WHERE payment_ref = $1
	`, r.tables.Purchases)

	return r.getOne(ctx, query, fmt.Sprintf("purchase with payment reference %q", paymentRef), paymentRef)
}

// ListByUser lists a user's purchases, newest first
func (r *PostgresPurchaseRepository) ListByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, payment_ref, total_amount, discount_applied, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Purchases)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		index[p.ID] = len(purchases)
		purchases = append(purchases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	if len(purchases) == 0 {
		return purchases, nil
	}

	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}

	itemQuery := fmt.Sprintf(`
		SELECT purchase_id, %s FROM %s
		WHERE purchase_id = ANY($1)
		ORDER BY purchase_id, position
	`, itemColumns, r.tables.PurchaseItems)

	itemRows, err := executor.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var purchaseID string
		var item models.PurchaseItem
		if err := itemRows.Scan(
			&purchaseID,
			&item.Kind,
			&item.TargetID,
			&item.MediaCategory,
			&item.PricePaid,
			&item.Title,
			&item.PreviewURL,
			&item.DownloadURL,
			&item.QRPayload,
			&item.CoveredLeafIDs,
		); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		if i, ok := index[purchaseID]; ok {
			purchases[i].Items = append(purchases[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase items: %w", err)
	}

	return purchases, nil
}

// ListGrants aggregates every distinct purchased target of a user, merging
// the covered leaves of repeated folder purchases.
func (r *PostgresPurchaseRepository) ListGrants(ctx context.Context, userID string) ([]models.Grant, error) {
	query := fmt.Sprintf(`
		SELECT i.kind, i.target_id, i.media_category,
		       COALESCE(array_agg(DISTINCT c.leaf_id) FILTER (WHERE c.leaf_id IS NOT NULL), '{}') AS covered
		FROM %s i
		JOIN %s p ON p.id = i.purchase_id
		LEFT JOIN LATERAL unnest(i.covered_leaf_ids) AS c(leaf_id) ON TRUE
		WHERE p.user_id = $1
		GROUP BY i.kind, i.target_id, i.media_category
	`, r.tables.PurchaseItems, r.tables.Purchases)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		var g models.Grant
		if err := rows.Scan(&g.Kind, &g.TargetID, &g.MediaCategory, &g.CoveredLeafIDs); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	r.logger.Debug("grants loaded", "user_id", userID, "grant_count", len(grants))

	return grants, nil
}

// FindItem returns the most recent purchase line of userID for a target
func (r *PostgresPurchaseRepository) FindItem(ctx context.Context, userID, targetID string) (*models.PurchaseItem, error) {
	query := fmt.Sprintf(`
		SELECT i.kind, i.target_id, i.media_category, i.price_paid, i.title,
		       i.preview_url, i.download_url, i.qr_payload, i.covered_leaf_ids
		FROM %s i
		JOIN %s p ON p.id = i.purchase_id
		WHERE p.user_id = $1 AND i.target_id = $2
		ORDER BY p.created_at DESC
		LIMIT 1
	`, r.tables.PurchaseItems, r.tables.Purchases)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, userID, targetID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("purchase item for %s: %w", targetID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find purchase item: %w", err)
	}
	return item, nil
}

func (r *PostgresPurchaseRepository) getOne(ctx context.Context, query, what string, args ...interface{}) (*models.Purchase, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	purchase, err := scanPurchase(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	items, err := r.listItems(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}
	purchase.Items = items

	return purchase, nil
}

func (r *PostgresPurchaseRepository) listItems(ctx context.Context, purchaseID string) ([]models.PurchaseItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE purchase_id = $1
		ORDER BY position ASC
	`, itemColumns, r.tables.PurchaseItems)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()

	items := []models.PurchaseItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase items: %w", err)
	}

	return items, nil
}

func scanPurchase(row pgx.Row) (*models.Purchase, error) {
	var p models.Purchase
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PaymentRef,
		&p.TotalAmount,
		&p.DiscountApplied,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanItem(row pgx.Row) (*models.PurchaseItem, error) {
	var item models.PurchaseItem
	err := row.Scan(
		&item.Kind,
		&item.TargetID,
		&item.MediaCategory,
		&item.PricePaid,
		&item.Title,
		&item.PreviewURL,
		&item.DownloadURL,
		&item.QRPayload,
		&item.CoveredLeafIDs,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

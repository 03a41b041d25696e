package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRefConstraint returns the name of the unique constraint on purchases.payment_ref
func (t *TableNames) PaymentRefConstraint() string {
	return t.Purchases + "_payment_ref_key"
}

// RunSchema creates tables and indexes if they don't exist.
//
// Folder and asset parent links carry no foreign keys: admin tooling may
// delete a folder without touching its subtree, and readers treat the
// orphaned subtree as its own root. Purchase items do not reference the
// catalog either, so catalog deletions never reach the ledger.
func RunSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "pgcrypto"`); err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			media_category TEXT NOT NULL CHECK (media_category IN ('template', 'picture', 'video', 'audio')),
			parent_id UUID,
			name TEXT NOT NULL,
			is_purchasable BOOLEAN NOT NULL DEFAULT FALSE,
			base_price BIGINT NOT NULL DEFAULT 0 CHECK (base_price >= 0),
			discount_price BIGINT CHECK (discount_price IS NULL OR (discount_price >= 0 AND discount_price < base_price)),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Assets + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			media_category TEXT NOT NULL CHECK (media_category IN ('template', 'picture', 'video', 'audio')),
			folder_id UUID NOT NULL,
			title TEXT NOT NULL,
			base_price BIGINT NOT NULL DEFAULT 0 CHECK (base_price >= 0),
			discount_price BIGINT CHECK (discount_price IS NULL OR (discount_price >= 0 AND discount_price < base_price)),
			preview_url TEXT NOT NULL DEFAULT '',
			download_url TEXT NOT NULL DEFAULT '',
			qr_payload TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Purchases + ` (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			payment_ref TEXT NOT NULL,
			total_amount BIGINT NOT NULL,
			discount_applied BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + tables.PaymentRefConstraint() + ` UNIQUE (payment_ref)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.PurchaseItems + ` (
			purchase_id TEXT NOT NULL REFERENCES ` + tables.Purchases + `(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('leaf', 'folder')),
			target_id TEXT NOT NULL,
			media_category TEXT NOT NULL,
			price_paid BIGINT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			preview_url TEXT NOT NULL DEFAULT '',
			download_url TEXT NOT NULL DEFAULT '',
			qr_payload TEXT NOT NULL DEFAULT '',
			covered_leaf_ids TEXT[] NOT NULL DEFAULT '{}',
			PRIMARY KEY (purchase_id, position)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_category_parent ON ` + tables.Folders + `(media_category, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_parent ON ` + tables.Folders + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_folder ON ` + tables.Assets + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_category ON ` + tables.Assets + `(media_category)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `purchases_user ON ` + tables.Purchases + `(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `purchase_items_target ON ` + tables.PurchaseItems + `(target_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables in reverse dependency order
func DropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.PurchaseItems, tables.Purchases, tables.Assets, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearCatalog deletes every folder and asset, leaving the ledger untouched
func ClearCatalog(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Assets); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders); err != nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"log"

	"marketplace/internal/config"
	"marketplace/internal/repository/postgres"
	postgresCatalog "marketplace/internal/repository/postgres/catalog"
	"marketplace/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't load a catalog")
	clearCatalog := flag.Bool("clear-catalog", false, "Delete every folder and asset (purchases are kept)")
	fixturePath := flag.String("fixture", "", "YAML catalog fixture (default: embedded demo catalog)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearCatalog) {
		log.Fatalf("BLOCKED: --drop-tables and --clear-catalog are disabled in production")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, 4, 1)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		if err := postgres.DropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("tables dropped", "table_prefix", cfg.TablePrefix)
	}

	if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "table_prefix", cfg.TablePrefix)

	if *schemaOnly {
		return
	}

	if *clearCatalog {
		if err := postgres.ClearCatalog(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear catalog: %v", err)
		}
		logger.Info("catalog cleared")
		return
	}

	fx, err := seed.LoadFixtureFile(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	seeder := seed.NewCatalogSeeder(
		postgresCatalog.NewFolderRepository(repoConfig),
		postgresCatalog.NewAssetRepository(repoConfig),
		logger,
	)

	// Fixed fixture ids make a rerun collide; outside prod, clear first so
	// reseeding is repeatable.
	if cfg.Environment != "prod" {
		if err := postgres.ClearCatalog(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear catalog: %v", err)
		}
	}

	result, err := seeder.Seed(ctx, fx)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	logger.Info("seeding complete", "folders", result.Folders, "assets", result.Assets)
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/domain/repositories"
	catalogRepo "marketplace/internal/domain/repositories/catalog"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
	"marketplace/internal/handler"
	"marketplace/internal/middleware"
	"marketplace/internal/repository/memory"
	"marketplace/internal/repository/postgres"
	postgresCatalog "marketplace/internal/repository/postgres/catalog"
	postgresCommerce "marketplace/internal/repository/postgres/commerce"
	"marketplace/internal/seed"
	serviceCatalog "marketplace/internal/service/catalog"
	serviceCommerce "marketplace/internal/service/commerce"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// stores bundles the repositories of the selected driver
type stores struct {
	folders   catalogRepo.FolderRepository
	assets    catalogRepo.AssetRepository
	purchases commerceRepo.PurchaseRepository
	txManager repositories.TransactionManager
	pinger    handler.Pinger
	close     func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.close()

	var verifier auth.TokenVerifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("AUTH_JWKS_URL not set, every request is anonymous")
	}

	// Services
	hierarchy := serviceCatalog.NewHierarchyResolver(st.folders, st.assets, logger)
	prices := serviceCatalog.NewPriceResolver(hierarchy, logger)
	entitlement := serviceCommerce.NewEntitlementService(st.purchases, hierarchy, cfg.BulkConcurrency, logger)
	trees := serviceCatalog.NewTreeService(st.folders, st.assets, entitlement, logger)
	purchases := serviceCommerce.NewPurchaseService(st.purchases, hierarchy, st.txManager, logger)
	delivery := serviceCommerce.NewDeliveryService(entitlement, hierarchy, st.purchases, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Health:    handler.NewHealthHandler(st.pinger, logger),
		Access:    handler.NewAccessHandler(entitlement, logger),
		Prices:    handler.NewPriceHandler(prices, logger),
		Purchases: handler.NewPurchaseHandler(purchases, logger),
		Catalog:   handler.NewCatalogHandler(trees, hierarchy, logger),
		Delivery:  handler.NewDeliveryHandler(delivery, logger),
	})

	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.OptionalAuth(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to answer OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.New()
		fx, err := seed.LoadFixtureFile(cfg.SeedFixture)
		if err != nil {
			return nil, err
		}
		result, err := seed.NewCatalogSeeder(store.Folders(), store.Assets(), logger).Seed(ctx, fx)
		if err != nil {
			return nil, err
		}
		logger.Info("memory store seeded", "folders", result.Folders, "assets", result.Assets)

		return &stores{
			folders:   store.Folders(),
			assets:    store.Assets(),
			purchases: store.Purchases(),
			txManager: store.TransactionManager(),
			close:     func() {},
		}, nil

	case config.StoreDriverPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "max_conns", cfg.DBMaxConns, "min_conns", cfg.DBMinConns)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		return &stores{
			folders:   postgresCatalog.NewFolderRepository(repoConfig),
			assets:    postgresCatalog.NewAssetRepository(repoConfig),
			purchases: postgresCommerce.NewPurchaseRepository(repoConfig),
			txManager: postgres.NewTransactionManager(pool, logger),
			pinger:    pool,
			close:     pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver)
}

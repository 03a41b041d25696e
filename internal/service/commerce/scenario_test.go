package commerce

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"marketplace/internal/domain/models/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
	commerceSvc "marketplace/internal/domain/services/commerce"
	"marketplace/internal/repository/memory"
	"marketplace/internal/seed"
	serviceCatalog "marketplace/internal/service/catalog"
)

// Video: R > F (bundle 500/400) > {A 150, B 200/180}, plus C 90 directly in R.
// Picture: P (bundle 100) > Q 60.
const (
	rootR   = "a0000000-0000-4000-8000-000000000001"
	bundleF = "a0000000-0000-4000-8000-000000000002"
	leafA   = "a0000000-0000-4000-8000-00000000000a"
	leafB   = "a0000000-0000-4000-8000-00000000000b"
	leafC   = "a0000000-0000-4000-8000-00000000000c"
	folderP = "b0000000-0000-4000-8000-000000000001"
	leafQ   = "b0000000-0000-4000-8000-00000000000a"

	missingID = "ffffffff-0000-4000-8000-000000000000"
)

const scenarioYAML = `
categories:
  - media_category: video
    folders:
      - id: a0000000-0000-4000-8000-000000000001
        name: R
        assets:
          - id: a0000000-0000-4000-8000-00000000000c
            title: C
            base_price: 90
            download_url: https://cdn.test/c
        folders:
          - id: a0000000-0000-4000-8000-000000000002
            name: F
            purchasable: true
            base_price: 500
            discount_price: 400
            assets:
              - id: a0000000-0000-4000-8000-00000000000a
                title: A
                base_price: 150
                preview_url: https://cdn.test/a-preview
                download_url: https://cdn.test/a
                qr_payload: qr-a
              - id: a0000000-0000-4000-8000-00000000000b
                title: B
                base_price: 200
                discount_price: 180
                download_url: https://cdn.test/b
  - media_category: picture
    folders:
      - id: b0000000-0000-4000-8000-000000000001
        name: P
        purchasable: true
        base_price: 100
        assets:
          - id: b0000000-0000-4000-8000-00000000000a
            title: Q
            base_price: 60
            download_url: https://cdn.test/q
`

type scenario struct {
	store       *memory.Store
	hierarchy   catalogSvc.HierarchyResolver
	entitlement commerceSvc.EntitlementService
	purchases   commerceSvc.PurchaseService
	delivery    commerceSvc.DeliveryService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	logger := testLogger()
	store := memory.New()

	fx, err := seed.ParseFixture([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("ParseFixture failed: %v", err)
	}
	if _, err := seed.NewCatalogSeeder(store.Folders(), store.Assets(), logger).Seed(context.Background(), fx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	hierarchy := serviceCatalog.NewHierarchyResolver(store.Folders(), store.Assets(), logger)
	entitlement := NewEntitlementService(store.Purchases(), hierarchy, 4, logger)

	return &scenario{
		store:       store,
		hierarchy:   hierarchy,
		entitlement: entitlement,
		purchases:   NewPurchaseService(store.Purchases(), hierarchy, store.TransactionManager(), logger),
		delivery:    NewDeliveryService(entitlement, hierarchy, store.Purchases(), logger),
	}
}

// buy records a purchase and fails the test on error
func (s *scenario) buy(t *testing.T, userID, ref string, items ...commerceSvc.ItemRequest) *commerceSvc.RecordResult {
	t.Helper()
	result, err := s.purchases.Record(context.Background(), &commerceSvc.RecordRequest{
		UserID:     userID,
		PaymentRef: ref,
		Items:      items,
	})
	if err != nil {
		t.Fatalf("Record(%s) failed: %v", ref, err)
	}
	return result
}

func leaf(id string) commerceSvc.ItemRequest {
	return commerceSvc.ItemRequest{Kind: catalog.NodeLeaf, TargetID: id}
}

func folder(id string) commerceSvc.ItemRequest {
	return commerceSvc.ItemRequest{Kind: catalog.NodeFolder, TargetID: id}
}

// addLeaf creates an asset after purchases were made
func (s *scenario) addLeaf(t *testing.T, id, folderID string, category catalog.MediaCategory) {
	t.Helper()
	err := s.store.Assets().Create(context.Background(), &catalog.Asset{
		ID:            id,
		MediaCategory: category,
		ParentID:      folderID,
		Title:         "late " + id[len(id)-4:],
		BasePrice:     10,
	})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
}

func (s *scenario) addFolder(t *testing.T, id, parentID string, category catalog.MediaCategory) {
	t.Helper()
	err := s.store.Folders().Create(context.Background(), &catalog.Folder{
		ID:            id,
		MediaCategory: category,
		ParentID:      &parentID,
		Name:          "late folder",
	})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
}

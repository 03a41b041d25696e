package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	models "marketplace/internal/domain/models/catalog"
	catalogSvc "marketplace/internal/domain/services/catalog"
	"marketplace/internal/repository/memory"
	"marketplace/internal/seed"
)

const (
	rootR   = "a0000000-0000-4000-8000-000000000001"
	bundleF = "a0000000-0000-4000-8000-000000000002"
	leafA   = "a0000000-0000-4000-8000-00000000000a"
	leafB   = "a0000000-0000-4000-8000-00000000000b"
	leafC   = "a0000000-0000-4000-8000-00000000000c"

	missingID = "ffffffff-0000-4000-8000-000000000000"
)

// R > F (bundle 500/400) > {A 150, B 200/180}; C 90 sits directly in R.
const videoYAML = `
categories:
  - media_category: video
    folders:
      - id: a0000000-0000-4000-8000-000000000001
        name: R
        assets:
          - id: a0000000-0000-4000-8000-00000000000c
            title: C
            base_price: 90
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
              - id: a0000000-0000-4000-8000-00000000000b
                title: B
                base_price: 200
                discount_price: 180
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVideoCatalog(t *testing.T) (*memory.Store, catalogSvc.HierarchyResolver) {
	t.Helper()
	store := memory.New()
	fx, err := seed.ParseFixture([]byte(videoYAML))
	if err != nil {
		t.Fatalf("ParseFixture failed: %v", err)
	}
	if _, err := seed.NewCatalogSeeder(store.Folders(), store.Assets(), testLogger()).Seed(context.Background(), fx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return store, NewHierarchyResolver(store.Folders(), store.Assets(), testLogger())
}

func folderIDs(chain []models.Folder) []string {
	ids := make([]string, 0, len(chain))
	for _, f := range chain {
		ids = append(ids, f.ID)
	}
	return ids
}

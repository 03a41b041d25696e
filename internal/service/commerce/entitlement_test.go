package commerce

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/domain/models/catalog"
	models "marketplace/internal/domain/models/commerce"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
)

const user = "user-1"

func assertAccess(t *testing.T, s *scenario, userID string, want map[string]bool) {
	t.Helper()
	ctx := context.Background()
	for id, expected := range want {
		got, err := s.entitlement.HasAccess(ctx, userID, id)
		if err != nil {
			t.Fatalf("HasAccess(%s) error = %v", id, err)
		}
		if got != expected {
			t.Errorf("HasAccess(%s) = %v, want %v", id, got, expected)
		}
	}
}

func TestHasAccess_FolderPurchaseScenario(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	assertAccess(t, s, user, map[string]bool{
		leafA:   true,
		leafB:   true,
		bundleF: true,
		rootR:   false,
		leafC:   false,
		folderP: false,
		leafQ:   false,
	})
}

func TestHasAccess_DirectLeafPurchase(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", leaf(leafC))

	assertAccess(t, s, user, map[string]bool{
		leafC:   true,
		leafA:   false,
		bundleF: false,
		rootR:   false,
	})
}

func TestHasAccess_NeverPurchased(t *testing.T) {
	s := newScenario(t)
	s.buy(t, "someone-else", "pay-1", folder(bundleF))

	assertAccess(t, s, user, map[string]bool{
		leafA:   false,
		bundleF: false,
		leafC:   false,
	})
}

func TestHasAccess_Anonymous(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	for _, id := range []string{leafA, bundleF, "not-a-uuid", ""} {
		got, err := s.entitlement.HasAccess(context.Background(), "", id)
		if err != nil {
			t.Errorf("HasAccess(anonymous, %q) error = %v, want nil", id, err)
		}
		if got {
			t.Errorf("HasAccess(anonymous, %q) = true", id)
		}
	}
}

func TestHasAccess_InvalidID(t *testing.T) {
	s := newScenario(t)

	for _, id := range []string{"", "not-a-uuid", "123"} {
		_, err := s.entitlement.HasAccess(context.Background(), user, id)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("HasAccess(%q) error = %v, want ErrValidation", id, err)
		}
	}
}

func TestHasAccess_LeavesAddedAfterPurchase(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	const lateLeaf = "a0000000-0000-4000-8000-0000000000d1"
	const lateFolder = "a0000000-0000-4000-8000-0000000000e1"
	const nestedLeaf = "a0000000-0000-4000-8000-0000000000d2"
	const outsideLeaf = "a0000000-0000-4000-8000-0000000000d3"

	s.addLeaf(t, lateLeaf, bundleF, catalog.CategoryVideo)
	s.addFolder(t, lateFolder, bundleF, catalog.CategoryVideo)
	s.addLeaf(t, nestedLeaf, lateFolder, catalog.CategoryVideo)
	s.addLeaf(t, outsideLeaf, rootR, catalog.CategoryVideo)

	assertAccess(t, s, user, map[string]bool{
		lateLeaf:    true,
		lateFolder:  true,
		nestedLeaf:  true,
		outsideLeaf: false,
	})
}

func TestHasAccess_DeletedFolderKeepsGrant(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	// Added after checkout, so only the live folder rule can grant it.
	const lateLeaf = "a0000000-0000-4000-8000-0000000000d1"
	s.addLeaf(t, lateLeaf, bundleF, catalog.CategoryVideo)

	s.store.DeleteFolder(bundleF)

	// The folder can no longer be found by a live walk from A.
	chain, err := s.hierarchy.Ancestors(context.Background(), leafA)
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty live chain for orphaned leaf, got %d folders", len(chain))
	}

	assertAccess(t, s, user, map[string]bool{
		leafA:    true,
		leafB:    true,
		lateLeaf: true,
		bundleF:  true,
		rootR:    false,
		leafC:    false,
	})
}

func TestHasAccess_CoveredLeafMovedOut(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	if !s.store.MoveAsset(leafA, rootR) {
		t.Fatal("MoveAsset failed")
	}

	assertAccess(t, s, user, map[string]bool{
		leafA: true,
		leafC: false,
	})
}

func TestHasAccess_DeletedLeafWithDirectGrant(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", leaf(leafC))
	s.store.DeleteAsset(leafC)

	assertAccess(t, s, user, map[string]bool{
		leafC:     true,
		missingID: false,
	})
}

func TestHasAccess_CategoriesAreIsolated(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(folderP))

	assertAccess(t, s, user, map[string]bool{
		folderP: true,
		leafQ:   true,
		leafA:   false,
		bundleF: false,
	})
}

func TestHasAccessBulk_MatchesHasAccess(t *testing.T) {
	ids := []string{rootR, bundleF, leafA, leafB, leafC, folderP, leafQ, missingID}

	tests := []struct {
		name  string
		setup func(t *testing.T, s *scenario)
	}{
		{"nothing owned", func(t *testing.T, s *scenario) {}},
		{"folder bundle", func(t *testing.T, s *scenario) {
			s.buy(t, user, "pay-1", folder(bundleF))
		}},
		{"leaf and other category", func(t *testing.T, s *scenario) {
			s.buy(t, user, "pay-1", leaf(leafC), folder(folderP))
		}},
		{"deleted bundle", func(t *testing.T, s *scenario) {
			s.buy(t, user, "pay-1", folder(bundleF))
			s.store.DeleteFolder(bundleF)
		}},
		{"deleted root", func(t *testing.T, s *scenario) {
			s.buy(t, user, "pay-1", folder(bundleF), leaf(leafC))
			s.store.DeleteFolder(rootR)
			s.store.DeleteAsset(leafC)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScenario(t)
			tt.setup(t, s)
			ctx := context.Background()

			bulk, err := s.entitlement.HasAccessBulk(ctx, user, ids)
			if err != nil {
				t.Fatalf("HasAccessBulk failed: %v", err)
			}
			if len(bulk) != len(ids) {
				t.Fatalf("expected %d entries, got %d", len(ids), len(bulk))
			}

			for _, id := range ids {
				single, err := s.entitlement.HasAccess(ctx, user, id)
				if err != nil {
					t.Fatalf("HasAccess(%s) failed: %v", id, err)
				}
				if bulk[id] != single {
					t.Errorf("node %s: bulk=%v single=%v", id, bulk[id], single)
				}
			}
		})
	}
}

func TestHasAccessBulk_Anonymous(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	got, err := s.entitlement.HasAccessBulk(context.Background(), "", []string{leafA, bundleF})
	if err != nil {
		t.Fatalf("HasAccessBulk failed: %v", err)
	}
	for id, allowed := range got {
		if allowed {
			t.Errorf("anonymous access to %s granted", id)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestHasAccessBulk_EmptyList(t *testing.T) {
	s := newScenario(t)
	_, err := s.entitlement.HasAccessBulk(context.Background(), user, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

// failingLedger counts grant reads and can fail them
type failingLedger struct {
	commerceRepo.PurchaseRepository
	err   error
	reads int
}

func (f *failingLedger) ListGrants(ctx context.Context, userID string) ([]models.Grant, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.PurchaseRepository.ListGrants(ctx, userID)
}

func TestHasAccessBulk_SingleLedgerRead(t *testing.T) {
	s := newScenario(t)
	s.buy(t, user, "pay-1", folder(bundleF))

	ledger := &failingLedger{PurchaseRepository: s.store.Purchases()}
	svc := NewEntitlementService(ledger, s.hierarchy, 2, testLogger())

	if _, err := svc.HasAccessBulk(context.Background(), user, []string{rootR, bundleF, leafA, leafB, leafC}); err != nil {
		t.Fatalf("HasAccessBulk failed: %v", err)
	}
	if ledger.reads != 1 {
		t.Errorf("expected 1 ledger read, got %d", ledger.reads)
	}
}

func TestHasAccess_StorageFailureIsAnError(t *testing.T) {
	s := newScenario(t)
	boom := errors.New("connection reset")
	ledger := &failingLedger{PurchaseRepository: s.store.Purchases(), err: boom}
	svc := NewEntitlementService(ledger, s.hierarchy, 2, testLogger())

	if _, err := svc.HasAccess(context.Background(), user, leafA); !errors.Is(err, boom) {
		t.Errorf("HasAccess error = %v, want %v", err, boom)
	}
	if _, err := svc.HasAccessBulk(context.Background(), user, []string{leafA}); !errors.Is(err, boom) {
		t.Errorf("HasAccessBulk error = %v, want %v", err, boom)
	}
}

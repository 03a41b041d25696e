package catalog

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain"
	models "marketplace/internal/domain/models/catalog"
)

// fakeEntitlement answers bulk checks from a fixed set
type fakeEntitlement struct {
	owned map[string]bool
	err   error
	calls int
}

func (f *fakeEntitlement) HasAccess(_ context.Context, _ string, nodeID string) (bool, error) {
	return f.owned[nodeID], f.err
}

func (f *fakeEntitlement) HasAccessBulk(_ context.Context, _ string, nodeIDs []string) (map[string]bool, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		result[id] = f.owned[id]
	}
	return result, nil
}

func findFolder(nodes []*models.FolderTreeNode, id string) *models.FolderTreeNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := findFolder(n.Folders, id); found != nil {
			return found
		}
	}
	return nil
}

func TestGetCategoryTree(t *testing.T) {
	store, _ := newVideoCatalog(t)
	ent := &fakeEntitlement{owned: map[string]bool{bundleF: true, leafA: true, leafB: true}}
	svc := NewTreeService(store.Folders(), store.Assets(), ent, testLogger())

	tree, err := svc.GetCategoryTree(context.Background(), "user-1", models.CategoryVideo)
	if err != nil {
		t.Fatalf("GetCategoryTree failed: %v", err)
	}
	if ent.calls != 1 {
		t.Errorf("expected 1 bulk check, got %d", ent.calls)
	}
	if tree.Degraded {
		t.Error("tree must not be degraded")
	}
	if len(tree.Folders) != 1 || tree.Folders[0].ID != rootR {
		t.Fatalf("expected single root R, got %d roots", len(tree.Folders))
	}

	root := tree.Folders[0]
	if root.Owned || len(root.Assets) != 1 || root.Assets[0].Owned {
		t.Errorf("root and its direct leaf must not be owned: %+v", root)
	}

	f := findFolder(tree.Folders, bundleF)
	if f == nil {
		t.Fatal("bundle folder missing from tree")
	}
	if !f.Owned || !f.IsPurchasable || f.Price != 400 {
		t.Errorf("unexpected bundle node: %+v", f)
	}
	if len(f.Assets) != 2 || !f.Assets[0].Owned || !f.Assets[1].Owned {
		t.Errorf("expected two owned leaves under F, got %+v", f.Assets)
	}
}

func TestGetCategoryTree_Anonymous(t *testing.T) {
	store, _ := newVideoCatalog(t)
	ent := &fakeEntitlement{}
	svc := NewTreeService(store.Folders(), store.Assets(), ent, testLogger())

	tree, err := svc.GetCategoryTree(context.Background(), "", models.CategoryVideo)
	if err != nil {
		t.Fatalf("GetCategoryTree failed: %v", err)
	}
	if ent.calls != 0 {
		t.Errorf("anonymous browse must not check ownership, got %d calls", ent.calls)
	}
	if len(tree.Folders) != 1 {
		t.Errorf("expected 1 root, got %d", len(tree.Folders))
	}
}

func TestGetCategoryTree_OwnershipFailureDegrades(t *testing.T) {
	store, _ := newVideoCatalog(t)
	ent := &fakeEntitlement{
		owned: map[string]bool{bundleF: true},
		err:   errors.New("ledger down"),
	}
	svc := NewTreeService(store.Folders(), store.Assets(), ent, testLogger())

	tree, err := svc.GetCategoryTree(context.Background(), "user-1", models.CategoryVideo)
	if err != nil {
		t.Fatalf("GetCategoryTree failed: %v", err)
	}
	if !tree.Degraded {
		t.Error("expected degraded tree")
	}
	if f := findFolder(tree.Folders, bundleF); f == nil || f.Owned {
		t.Error("nothing may be marked owned when ownership is unknown")
	}
}

func TestGetCategoryTree_OrphanFolderBecomesRoot(t *testing.T) {
	store, _ := newVideoCatalog(t)
	store.DeleteFolder(rootR)
	svc := NewTreeService(store.Folders(), store.Assets(), &fakeEntitlement{}, testLogger())

	tree, err := svc.GetCategoryTree(context.Background(), "", models.CategoryVideo)
	if err != nil {
		t.Fatalf("GetCategoryTree failed: %v", err)
	}
	if len(tree.Folders) != 1 || tree.Folders[0].ID != bundleF {
		t.Fatalf("expected F as the only root, got %d roots", len(tree.Folders))
	}
	if len(tree.Folders[0].Assets) != 2 {
		t.Errorf("expected F to keep its 2 leaves, got %d", len(tree.Folders[0].Assets))
	}
}

func TestGetCategoryTree_EmptyAndInvalid(t *testing.T) {
	store, _ := newVideoCatalog(t)
	svc := NewTreeService(store.Folders(), store.Assets(), &fakeEntitlement{}, testLogger())
	ctx := context.Background()

	tree, err := svc.GetCategoryTree(ctx, "user-1", models.CategoryAudio)
	if err != nil {
		t.Fatalf("GetCategoryTree failed: %v", err)
	}
	if tree.Folders == nil || len(tree.Folders) != 0 {
		t.Errorf("expected empty non-nil folder list, got %v", tree.Folders)
	}

	if _, err := svc.GetCategoryTree(ctx, "user-1", "sculpture"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

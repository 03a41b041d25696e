package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/domain/models/catalog"

	"github.com/google/uuid"
)

type folderRepository struct {
	s *Store
}

func (r *folderRepository) Create(_ context.Context, folder *catalog.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if _, exists := r.s.folders[folder.ID]; exists {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
	}
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	f := cloneFolder(folder)
	r.s.folders[f.ID] = &f
	return nil
}

func (r *folderRepository) GetByID(_ context.Context, id string) (*catalog.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	out := cloneFolder(f)
	return &out, nil
}

func (r *folderRepository) GetByIDs(_ context.Context, ids []string) ([]catalog.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Folder, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if f, ok := r.s.folders[id]; ok {
			result = append(result, cloneFolder(f))
		}
	}
	return result, nil
}

func (r *folderRepository) ListChildren(_ context.Context, folderID string) ([]catalog.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Folder, 0)
	for _, f := range r.s.folders {
		if f.ParentID != nil && *f.ParentID == folderID {
			result = append(result, cloneFolder(f))
		}
	}
	sortFolders(result)
	return result, nil
}

func (r *folderRepository) ListByCategory(_ context.Context, category catalog.MediaCategory) ([]catalog.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Folder, 0)
	for _, f := range r.s.folders {
		if f.MediaCategory == category {
			result = append(result, cloneFolder(f))
		}
	}
	sortFolders(result)
	return result, nil
}

func (r *folderRepository) GetAncestors(_ context.Context, id string) ([]catalog.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	chain := make([]catalog.Folder, 0)
	seen := make(map[string]struct{})
	for {
		f, ok := r.s.folders[id]
		if !ok {
			break
		}
		if _, dup := seen[id]; dup {
			break
		}
		seen[id] = struct{}{}
		chain = append(chain, cloneFolder(f))
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}
	return chain, nil
}

type assetRepository struct {
	s *Store
}

func (r *assetRepository) Create(_ context.Context, asset *catalog.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if _, exists := r.s.assets[asset.ID]; exists {
		return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrConflict)
	}
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	a := cloneAsset(asset)
	r.s.assets[a.ID] = &a
	return nil
}

func (r *assetRepository) GetByID(_ context.Context, id string) (*catalog.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	out := cloneAsset(a)
	return &out, nil
}

func (r *assetRepository) GetByIDs(_ context.Context, ids []string) ([]catalog.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Asset, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if a, ok := r.s.assets[id]; ok {
			result = append(result, cloneAsset(a))
		}
	}
	return result, nil
}

func (r *assetRepository) ListByFolder(_ context.Context, folderID string) ([]catalog.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Asset, 0)
	for _, a := range r.s.assets {
		if a.ParentID == folderID {
			result = append(result, cloneAsset(a))
		}
	}
	sortAssets(result)
	return result, nil
}

func (r *assetRepository) ListByCategory(_ context.Context, category catalog.MediaCategory) ([]catalog.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]catalog.Asset, 0)
	for _, a := range r.s.assets {
		if a.MediaCategory == category {
			result = append(result, cloneAsset(a))
		}
	}
	sortAssets(result)
	return result, nil
}

// Map iteration is random; match the postgres ordering (name/title, then id).
func sortFolders(folders []catalog.Folder) {
	slices.SortFunc(folders, func(a, b catalog.Folder) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortAssets(assets []catalog.Asset) {
	slices.SortFunc(assets, func(a, b catalog.Asset) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func cloneFolder(f *catalog.Folder) catalog.Folder {
	out := *f
	if f.ParentID != nil {
		p := *f.ParentID
		out.ParentID = &p
	}
	if f.DiscountPrice != nil {
		d := *f.DiscountPrice
		out.DiscountPrice = &d
	}
	return out
}

func cloneAsset(a *catalog.Asset) catalog.Asset {
	out := *a
	if a.DiscountPrice != nil {
		d := *a.DiscountPrice
		out.DiscountPrice = &d
	}
	return out
}

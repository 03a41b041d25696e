// Package memory is an in-process implementation of the catalog store and
// purchase ledger. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"marketplace/internal/domain/models/catalog"
	"marketplace/internal/domain/models/commerce"
	"marketplace/internal/domain/repositories"
	catalogRepo "marketplace/internal/domain/repositories/catalog"
	commerceRepo "marketplace/internal/domain/repositories/commerce"
)

type Store struct {
	mu sync.RWMutex

	// Catalog storage
	folders map[string]*catalog.Folder
	assets  map[string]*catalog.Asset

	// Ledger storage, in insertion order
	purchases []*commerce.Purchase
	byRef     map[string]*commerce.Purchase

	txMu sync.Mutex
}

func New() *Store {
	return &Store{
		folders:   make(map[string]*catalog.Folder),
		assets:    make(map[string]*catalog.Asset),
		purchases: make([]*commerce.Purchase, 0),
		byRef:     make(map[string]*commerce.Purchase),
	}
}

func (s *Store) Folders() catalogRepo.FolderRepository {
	return &folderRepository{s: s}
}

func (s *Store) Assets() catalogRepo.AssetRepository {
	return &assetRepository{s: s}
}

func (s *Store) Purchases() commerceRepo.PurchaseRepository {
	return &purchaseRepository{s: s}
}

// TransactionManager serializes transactional functions. Every store write
// is a single locked call, so there is nothing to roll back.
func (s *Store) TransactionManager() repositories.TransactionManager {
	return &txManager{s: s}
}

type txManager struct {
	s *Store
}

func (m *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	return fn(ctx)
}

// DeleteFolder removes a folder without touching its subtree, the way
// admin tooling does. Children become orphans.
func (s *Store) DeleteFolder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, id)
}

// DeleteAsset removes an asset from the catalog
func (s *Store) DeleteAsset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, id)
}

// MoveAsset reparents an asset
func (s *Store) MoveAsset(id, folderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return false
	}
	a.ParentID = folderID
	return true
}

package catalog

import "time"

// Tree is an arena of one category's folders indexed by id. Parent links are
// plain ids, so deleted or reparented folders never leave dangling pointers.
type Tree struct {
	Category MediaCategory
	folders  map[string]*Folder
}

// NewTree indexes folders by id. Folders from other categories are ignored.
func NewTree(category MediaCategory, folders []Folder) *Tree {
	t := &Tree{
		Category: category,
		folders:  make(map[string]*Folder, len(folders)),
	}
	for i := range folders {
		if folders[i].MediaCategory != category {
			continue
		}
		t.folders[folders[i].ID] = &folders[i]
	}
	return t
}

// Folder looks up a folder by id
func (t *Tree) Folder(id string) (*Folder, bool) {
	f, ok := t.folders[id]
	return f, ok
}

// Len returns the number of folders in the arena
func (t *Tree) Len() int {
	return len(t.folders)
}

// Ancestors walks from startID towards the root. The walk stops at a root,
// at a missing parent (orphaned subtree) or at the first repeated id.
func (t *Tree) Ancestors(startID string) []Folder {
	var chain []Folder
	seen := make(map[string]struct{})

	id := startID
	for {
		f, ok := t.folders[id]
		if !ok {
			break
		}
		if _, dup := seen[id]; dup {
			break
		}
		seen[id] = struct{}{}
		chain = append(chain, *f)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}
	return chain
}

// AncestorIDs is Ancestors plus the dangling parent id of an orphaned chain
func (t *Tree) AncestorIDs(startID string) []string {
	return ChainIDs(startID, t.Ancestors(startID))
}

// ChainIDs converts a live ancestor chain that began at startID into ids.
// When the chain ends at a folder whose parent no longer exists, that parent
// id is appended: grants recorded against a deleted folder still reach the
// subtree that survived it. An empty chain means startID itself is gone.
func ChainIDs(startID string, chain []Folder) []string {
	if len(chain) == 0 {
		if startID == "" {
			return nil
		}
		return []string{startID}
	}

	ids := make([]string, 0, len(chain)+1)
	seen := make(map[string]struct{}, len(chain))
	for _, f := range chain {
		ids = append(ids, f.ID)
		seen[f.ID] = struct{}{}
	}

	last := chain[len(chain)-1]
	if last.ParentID != nil {
		if _, ok := seen[*last.ParentID]; !ok {
			ids = append(ids, *last.ParentID)
		}
	}
	return ids
}

// CategoryTree is the nested browse view of one category
type CategoryTree struct {
	Category MediaCategory     `json:"media_category"`
	Folders  []*FolderTreeNode `json:"folders"`
	Degraded bool              `json:"degraded,omitempty"` // ownership could not be resolved
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ParentID      *string           `json:"parent_id"`
	IsPurchasable bool              `json:"is_purchasable"`
	Price         int64             `json:"price"`
	Owned         bool              `json:"owned"`
	CreatedAt     time.Time         `json:"created_at"`
	Folders       []*FolderTreeNode `json:"folders"`
	Assets        []AssetTreeNode   `json:"assets"`
}

// AssetTreeNode represents a leaf in the tree (no delivery URLs)
type AssetTreeNode struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Price      int64  `json:"price"`
	PreviewURL string `json:"preview_url,omitempty"`
	Owned      bool   `json:"owned"`
}

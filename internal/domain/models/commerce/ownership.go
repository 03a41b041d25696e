package commerce

import (
	"marketplace/internal/domain/models/catalog"
)

// Grant is one distinct purchased target of a user, as aggregated from the ledger
type Grant struct {
	Kind           catalog.NodeKind      `json:"kind"`
	TargetID       string                `json:"target_id"`
	MediaCategory  catalog.MediaCategory `json:"media_category"`
	CoveredLeafIDs []string              `json:"covered_leaf_ids,omitempty"`
}

// CategoryOwnership holds the purchased sets of a single media category
type CategoryOwnership struct {
	Leaves  map[string]struct{}
	Folders map[string]struct{}
	Covered map[string]struct{} // leaves inside purchased folders at purchase time
}

func newCategoryOwnership() *CategoryOwnership {
	return &CategoryOwnership{
		Leaves:  make(map[string]struct{}),
		Folders: make(map[string]struct{}),
		Covered: make(map[string]struct{}),
	}
}

// HasLeaf reports a direct or covered leaf grant
func (c *CategoryOwnership) HasLeaf(id string) bool {
	if _, ok := c.Leaves[id]; ok {
		return true
	}
	_, ok := c.Covered[id]
	return ok
}

// HasAnyFolder reports whether any of ids is a purchased folder
func (c *CategoryOwnership) HasAnyFolder(ids []string) bool {
	for _, id := range ids {
		if _, ok := c.Folders[id]; ok {
			return true
		}
	}
	return false
}

// Ownership is the per-request view of everything a user has bought,
// partitioned by media category.
type Ownership struct {
	UserID     string
	categories map[catalog.MediaCategory]*CategoryOwnership
}

var emptyCategory = newCategoryOwnership()

// NewOwnership partitions grants by category
func NewOwnership(userID string, grants []Grant) *Ownership {
	o := &Ownership{
		UserID:     userID,
		categories: make(map[catalog.MediaCategory]*CategoryOwnership),
	}
	for _, g := range grants {
		c, ok := o.categories[g.MediaCategory]
		if !ok {
			c = newCategoryOwnership()
			o.categories[g.MediaCategory] = c
		}
		switch g.Kind {
		case catalog.NodeLeaf:
			c.Leaves[g.TargetID] = struct{}{}
		case catalog.NodeFolder:
			c.Folders[g.TargetID] = struct{}{}
			for _, leafID := range g.CoveredLeafIDs {
				c.Covered[leafID] = struct{}{}
			}
		}
	}
	return o
}

// Category returns the purchased sets of one category. Never nil; callers
// must not mutate the result.
func (o *Ownership) Category(c catalog.MediaCategory) *CategoryOwnership {
	if co, ok := o.categories[c]; ok {
		return co
	}
	return emptyCategory
}

// HoldsTarget reports whether id was bought in any category, directly or as
// a covered leaf. Used for nodes that no longer exist in the catalog.
func (o *Ownership) HoldsTarget(id string) bool {
	for _, c := range o.categories {
		if c.HasLeaf(id) {
			return true
		}
		if _, ok := c.Folders[id]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether the user owns nothing
func (o *Ownership) Empty() bool {
	return len(o.categories) == 0
}

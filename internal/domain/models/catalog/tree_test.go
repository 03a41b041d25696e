package catalog

import (
	"slices"
	"testing"
)

func folder(id string, parent string, category MediaCategory) Folder {
	f := Folder{ID: id, MediaCategory: category, Name: id}
	if parent != "" {
		f.ParentID = &parent
	}
	return f
}

func chainIDs(chain []Folder) []string {
	ids := make([]string, 0, len(chain))
	for _, f := range chain {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestTreeAncestors(t *testing.T) {
	tree := NewTree(CategoryVideo, []Folder{
		folder("root", "", CategoryVideo),
		folder("mid", "root", CategoryVideo),
		folder("leafdir", "mid", CategoryVideo),
		folder("orphan", "gone", CategoryVideo),
		folder("loop-a", "loop-b", CategoryVideo),
		folder("loop-b", "loop-a", CategoryVideo),
		folder("picture", "", CategoryPicture),
	})

	tests := []struct {
		name    string
		start   string
		want    []string
		wantIDs []string
	}{
		{"deep chain", "leafdir", []string{"leafdir", "mid", "root"}, []string{"leafdir", "mid", "root"}},
		{"root", "root", []string{"root"}, []string{"root"}},
		{"orphan keeps dangling parent id", "orphan", []string{"orphan"}, []string{"orphan", "gone"}},
		{"cycle is cut", "loop-a", []string{"loop-a", "loop-b"}, []string{"loop-a", "loop-b"}},
		{"missing start", "gone", []string{}, []string{"gone"}},
		{"other category ignored", "picture", []string{}, []string{"picture"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chainIDs(tree.Ancestors(tt.start)); !slices.Equal(got, tt.want) {
				t.Errorf("Ancestors = %v, want %v", got, tt.want)
			}
			if got := tree.AncestorIDs(tt.start); !slices.Equal(got, tt.wantIDs) {
				t.Errorf("AncestorIDs = %v, want %v", got, tt.wantIDs)
			}
		})
	}

	if tree.Len() != 6 {
		t.Errorf("expected 6 video folders, got %d", tree.Len())
	}
}

func TestChainIDs_Empty(t *testing.T) {
	if ids := ChainIDs("", nil); ids != nil {
		t.Errorf("expected nil, got %v", ids)
	}
}

func TestNodeAccessors(t *testing.T) {
	discount := int64(80)
	a := &Asset{ID: "a", MediaCategory: CategoryAudio, ParentID: "f", Title: "Track", BasePrice: 100, DiscountPrice: &discount}
	f := &Folder{ID: "f", MediaCategory: CategoryAudio, Name: "Album", BasePrice: 300}

	leaf := AssetNode(a)
	if leaf.ID() != "a" || leaf.Name() != "Track" || leaf.EffectivePrice() != 80 || leaf.ChainStart() != "f" {
		t.Errorf("unexpected leaf node accessors")
	}

	dir := FolderNode(f)
	if dir.ID() != "f" || dir.Name() != "Album" || dir.EffectivePrice() != 300 || dir.ChainStart() != "f" {
		t.Errorf("unexpected folder node accessors")
	}
	if dir.Category() != CategoryAudio {
		t.Errorf("expected audio, got %s", dir.Category())
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range AllCategories {
		if got, err := ParseCategory(string(c)); err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("Video"); err == nil {
		t.Error("categories are case sensitive")
	}
}

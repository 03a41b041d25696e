package catalog

// NodeKind distinguishes leaf assets from folders wherever both can appear
type NodeKind string

const (
	NodeLeaf   NodeKind = "leaf"
	NodeFolder NodeKind = "folder"
)

func (k NodeKind) Valid() bool {
	return k == NodeLeaf || k == NodeFolder
}

// Node is a resolved catalog entry: exactly one of Folder or Asset is set.
type Node struct {
	Kind   NodeKind
	Folder *Folder
	Asset  *Asset
}

func FolderNode(f *Folder) *Node { return &Node{Kind: NodeFolder, Folder: f} }

func AssetNode(a *Asset) *Node { return &Node{Kind: NodeLeaf, Asset: a} }

func (n *Node) ID() string {
	if n.Kind == NodeLeaf {
		return n.Asset.ID
	}
	return n.Folder.ID
}

func (n *Node) Category() MediaCategory {
	if n.Kind == NodeLeaf {
		return n.Asset.MediaCategory
	}
	return n.Folder.MediaCategory
}

// Name is the folder name or the asset title
func (n *Node) Name() string {
	if n.Kind == NodeLeaf {
		return n.Asset.Title
	}
	return n.Folder.Name
}

func (n *Node) EffectivePrice() int64 {
	if n.Kind == NodeLeaf {
		return n.Asset.EffectivePrice()
	}
	return n.Folder.EffectivePrice()
}

// ChainStart returns the folder id an ancestor walk begins at: the folder
// itself, or the parent folder of a leaf.
func (n *Node) ChainStart() string {
	if n.Kind == NodeLeaf {
		return n.Asset.ParentID
	}
	return n.Folder.ID
}

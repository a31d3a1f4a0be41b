package domain

// NodeKind distinguishes map tree nodes
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeCategory
	NodeDocument
)

// MapNode represents a node in the document map tree for navigation
type MapNode struct {
	Kind       NodeKind
	Name       string
	Path       string // relative path; empty for the root
	Tokens     TokenCounts
	HasJSON    bool
	Children   []*MapNode
	IsExpanded bool
	Parent     *MapNode
}

// BuildMap assembles the category/document tree over a registry snapshot.
// Categories and documents are sorted, so the tree is deterministic.
func (r *Registry) BuildMap() *MapNode {
	root := &MapNode{Kind: NodeRoot, Name: "documents", IsExpanded: true}
	for _, category := range r.Categories() {
		catNode := &MapNode{
			Kind:   NodeCategory,
			Name:   category,
			Parent: root,
		}
		for _, entry := range r.Entries(category) {
			catNode.Tokens.MD += entry.Tokens.MD
			catNode.Tokens.JSON += entry.Tokens.JSON
			catNode.Children = append(catNode.Children, &MapNode{
				Kind:    NodeDocument,
				Name:    entry.ID,
				Path:    entry.Path,
				Tokens:  entry.Tokens,
				HasJSON: entry.HasJSON,
				Parent:  catNode,
			})
		}
		root.Children = append(root.Children, catNode)
	}
	return root
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *MapNode) Flatten() []*MapNode {
	var result []*MapNode
	n.flattenRecursive(&result)
	return result
}

func (n *MapNode) flattenRecursive(result *[]*MapNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *MapNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Toggle expands or collapses the node
func (n *MapNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *MapNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *MapNode) Collapse() {
	n.IsExpanded = false
}

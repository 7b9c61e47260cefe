package category

import (
	"sort"

	"storefront.GO/core/apperror"
	categoryEntity "storefront.GO/model/entity/category"
)

// Tree is an id-indexed snapshot of the category hierarchy. Parent links are
// followed by lookup, so broken or looping links never panic.
type Tree struct {
	nodes    map[uint]categoryEntity.Category
	children map[uint][]uint
	roots    []uint
}

// NewTree indexes cats. Children lists are ordered by id.
func NewTree(cats []categoryEntity.Category) *Tree {
	t := &Tree{
		nodes:    make(map[uint]categoryEntity.Category, len(cats)),
		children: make(map[uint][]uint),
	}
	for _, c := range cats {
		t.nodes[c.EntityID] = c
	}
	for _, c := range cats {
		if c.ParentID == nil {
			t.roots = append(t.roots, c.EntityID)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.EntityID)
	}
	sortIDs(t.roots)
	for id := range t.children {
		sortIDs(t.children[id])
	}
	return t
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Len returns the number of categories in the snapshot.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns the category with id.
func (t *Tree) Get(id uint) (categoryEntity.Category, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Path returns the chain from the root down to id, inclusive. A parent id
// that cannot be resolved ends the walk and the partial path is returned.
func (t *Tree) Path(id uint) ([]categoryEntity.Category, error) {
	cur, ok := t.nodes[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	path := []categoryEntity.Category{cur}
	seen := map[uint]bool{id: true}
	for cur.ParentID != nil {
		pid := *cur.ParentID
		parent, ok := t.nodes[pid]
		if !ok || seen[pid] {
			break
		}
		seen[pid] = true
		path = append(path, parent)
		cur = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Descendants returns every category below id, breadth first. id itself is
// not included.
func (t *Tree) Descendants(id uint) []categoryEntity.Category {
	ids := t.DescendantIDs(id)
	out := make([]categoryEntity.Category, len(ids))
	for i, d := range ids {
		out[i] = t.nodes[d]
	}
	return out
}

// DescendantIDs is Descendants returning ids only.
func (t *Tree) DescendantIDs(id uint) []uint {
	var out []uint
	seen := map[uint]bool{id: true}
	queue := []uint{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range t.children[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// IsDescendant reports whether candidate lies in the subtree below ancestor.
func (t *Tree) IsDescendant(ancestor, candidate uint) bool {
	for _, id := range t.DescendantIDs(ancestor) {
		if id == candidate {
			return true
		}
	}
	return false
}

// Children returns the direct children of id.
func (t *Tree) Children(id uint) []categoryEntity.Category {
	out := make([]categoryEntity.Category, 0, len(t.children[id]))
	for _, c := range t.children[id] {
		out = append(out, t.nodes[c])
	}
	return out
}

// HasChildren reports whether any category names id as parent.
func (t *Tree) HasChildren(id uint) bool {
	return len(t.children[id]) > 0
}

// Roots returns the categories without a parent.
func (t *Tree) Roots() []categoryEntity.Category {
	out := make([]categoryEntity.Category, len(t.roots))
	for i, id := range t.roots {
		out[i] = t.nodes[id]
	}
	return out
}

// ExpectedLevels walks the tree from the roots and returns the level every
// category should have. A category whose parent is missing counts as a root.
func (t *Tree) ExpectedLevels() map[uint]int {
	levels := make(map[uint]int, len(t.nodes))
	var anchors []uint
	anchors = append(anchors, t.roots...)
	for id, c := range t.nodes {
		if c.ParentID != nil {
			if _, ok := t.nodes[*c.ParentID]; !ok {
				anchors = append(anchors, id)
			}
		}
	}
	sortIDs(anchors)
	for _, a := range anchors {
		if _, done := levels[a]; done {
			continue
		}
		levels[a] = 0
		queue := []uint{a}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, child := range t.children[cur] {
				if _, done := levels[child]; done {
					continue
				}
				levels[child] = levels[cur] + 1
				queue = append(queue, child)
			}
		}
	}
	return levels
}

// Node is a category with its active subtree, used for tree listings.
type Node struct {
	categoryEntity.Category
	Children []Node `json:"children"`
}

// ActiveNodes returns the nested tree of active categories.
func (t *Tree) ActiveNodes() []Node {
	var build func(ids []uint, seen map[uint]bool) []Node
	build = func(ids []uint, seen map[uint]bool) []Node {
		nodes := []Node{}
		for _, id := range ids {
			c := t.nodes[id]
			if !c.IsActive || seen[id] {
				continue
			}
			seen[id] = true
			nodes = append(nodes, Node{Category: c, Children: build(t.children[id], seen)})
		}
		return nodes
	}
	return build(t.roots, map[uint]bool{})
}

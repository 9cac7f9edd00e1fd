package catalog

import "github.com/google/uuid"

// CategoryTreeNode is the hierarchical projection of a category.
// It is rebuilt per request and never persisted.
type CategoryTreeNode struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Subcategories []CategoryTreeNode `json:"subcategories"`
}

// BuildCategoryTree nests a flat collection of categories under parentID.
// A nil parentID returns the roots. Filtering by status is the caller's job.
//
// Records are grouped by parent once, so every level is a map lookup.
// Siblings keep their relative input order. Records whose parent is not in
// the input are unreachable and therefore omitted. A parent reference cycle
// is cut where a node would reappear on its own ancestor path.
func BuildCategoryTree(records []Category, parentID *uuid.UUID) []CategoryTreeNode {
	children := make(map[uuid.UUID][]int, len(records))
	for i := range records {
		key := uuid.Nil
		if records[i].ParentID != nil {
			key = *records[i].ParentID
		}
		children[key] = append(children[key], i)
	}

	start := uuid.Nil
	if parentID != nil {
		start = *parentID
	}

	onPath := make(map[uuid.UUID]bool)
	return expandCategoryTree(records, children, start, onPath)
}

func expandCategoryTree(
	records []Category,
	children map[uuid.UUID][]int,
	parent uuid.UUID,
	onPath map[uuid.UUID]bool,
) []CategoryTreeNode {
	indexes := children[parent]
	nodes := make([]CategoryTreeNode, 0, len(indexes))
	for _, i := range indexes {
		c := &records[i]
		if onPath[c.ID] {
			continue
		}
		onPath[c.ID] = true
		nodes = append(nodes, CategoryTreeNode{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			Subcategories: expandCategoryTree(records, children, c.ID, onPath),
		})
		delete(onPath, c.ID)
	}
	return nodes
}

// CountNodes returns the number of nodes in a forest
func CountNodes(nodes []CategoryTreeNode) int {
	total := len(nodes)
	for i := range nodes {
		total += CountNodes(nodes[i].Subcategories)
	}
	return total
}

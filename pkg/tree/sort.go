package tree

import (
	"sort"
	"strings"

	"github.com/runningman84/zfs-list-tree/pkg/models"
)

// Sort returns a copy of t with root filesystems ordered by the given column
// and each filesystem's snapshots ordered the same way among themselves.
// Snapshots stay with their owner. Equal keys keep their source order.
// An out of range column returns t unchanged.
func Sort(t *models.Tree, column int, descending bool) *models.Tree {
	if t == nil || column < 0 || column >= len(t.Columns) {
		return t
	}
	col := t.Columns[column]

	sorted := &models.Tree{
		Columns: t.Columns,
		Roots:   make([]*models.Node, len(t.Roots)),
	}
	for i, root := range t.Roots {
		clone := *root
		clone.Children = append([]*models.Node(nil), root.Children...)
		sortNodes(clone.Children, col, descending)
		sorted.Roots[i] = &clone
	}
	sortNodes(sorted.Roots, col, descending)
	return sorted
}

func sortNodes(nodes []*models.Node, col models.Column, descending bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		c := compare(nodes[i].SortKey(col), nodes[j].SortKey(col))
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b models.Value) int {
	if a.Numeric && b.Numeric {
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Text, b.Text)
}

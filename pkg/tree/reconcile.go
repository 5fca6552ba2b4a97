package tree

import "github.com/runningman84/zfs-list-tree/pkg/models"

// CaptureExpansion records the names of the root filesystems isExpanded
// reports as expanded, visiting roots in order.
func CaptureExpansion(t *models.Tree, isExpanded func(*models.Node) bool) models.ExpansionSet {
	set := models.ExpansionSet{}
	if t == nil {
		return set
	}
	for _, root := range t.Roots {
		if isExpanded(root) {
			set.Add(root.Name)
		}
	}
	return set
}

// ApplyExpansion calls expand for every root filesystem of t whose name is
// in set. Matching is by name only: a filesystem that was renamed or
// destroyed since the set was captured is dropped, and a new filesystem that
// reuses an expanded name is expanded.
func ApplyExpansion(t *models.Tree, set models.ExpansionSet, expand func(*models.Node)) {
	if t == nil || len(set) == 0 {
		return
	}
	for _, root := range t.Roots {
		if set.Has(root.Name) {
			expand(root)
		}
	}
}

package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/runningman84/zfs-list-tree/pkg/models"
	"github.com/runningman84/zfs-list-tree/pkg/schema"
)

const (
	columnGap      = "  "
	minColumnWidth = 4
	maxColumnWidth = 200
)

const (
	markerExpanded  = "▾ "
	markerCollapsed = "▸ "
	markerLeaf      = "  "
	snapshotIndent  = "    "
)

// columnLayout is the on-screen shape of one schema column
type columnLayout struct {
	label string
	width int
	left  bool
}

// defaultColumnWidth is used for columns without a saved width
func defaultColumnWidth(prop string) int {
	switch prop {
	case schema.NameProperty:
		return 36
	case "mountpoint":
		return 24
	case "creation":
		return 21
	}
	return 9
}

func newLayout(cols []models.Column, geom models.ViewGeometry) []columnLayout {
	layout := make([]columnLayout, len(cols))
	for i, col := range cols {
		layout[i] = columnLayout{
			label: col.Property,
			width: clampWidth(geom.ColumnWidth(col.Property, defaultColumnWidth(col.Property))),
			left:  schema.LeftAligned(col.Property),
		}
	}
	return layout
}

func clampWidth(w int) int {
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}

// formatCells pads or truncates each cell to its column width
func formatCells(cells []string, layout []columnLayout) string {
	parts := make([]string, len(layout))
	for i, col := range layout {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		cell = runewidth.Truncate(cell, col.width, "…")
		if col.left {
			parts[i] = runewidth.FillRight(cell, col.width)
		} else {
			parts[i] = runewidth.FillLeft(cell, col.width)
		}
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}

// rowCells returns a node's display values with the tree marker in front of the name
func rowCells(node *models.Node, cols []models.Column, expanded bool) []string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = node.Display(col)
	}
	if len(cells) > 0 {
		cells[0] = marker(node, expanded) + cells[0]
	}
	return cells
}

func marker(node *models.Node, expanded bool) string {
	switch {
	case node.Kind == models.KindSnapshot:
		return snapshotIndent
	case len(node.Children) == 0:
		return markerLeaf
	case expanded:
		return markerExpanded
	}
	return markerCollapsed
}

// headerCells returns the column labels, marking the sort column
func headerCells(layout []columnLayout, sortColumn int, descending bool) []string {
	cells := make([]string, len(layout))
	for i, col := range layout {
		label := col.label
		if i == sortColumn {
			if descending {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		if i == 0 {
			label = markerLeaf + label
		}
		cells[i] = label
	}
	return cells
}

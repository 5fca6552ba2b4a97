package ui

import (
	"bufio"
	"io"

	"github.com/runningman84/zfs-list-tree/pkg/models"
)

// Print writes the whole tree as text, every filesystem expanded, using the
// same column layout as the interactive view.
func Print(w io.Writer, t *models.Tree, geom models.ViewGeometry) error {
	layout := newLayout(t.Columns, geom)
	bw := bufio.NewWriter(w)

	writeLine := func(s string) {
		_, _ = bw.WriteString(s)
		_ = bw.WriteByte('\n')
	}

	writeLine(formatCells(headerCells(layout, -1, false), layout))
	for _, fs := range t.Roots {
		writeLine(formatCells(rowCells(fs, t.Columns, true), layout))
		for _, snap := range fs.Children {
			writeLine(formatCells(rowCells(snap, t.Columns, true), layout))
		}
	}

	return bw.Flush()
}

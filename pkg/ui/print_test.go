package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/runningman84/zfs-list-tree/pkg/models"
	"github.com/runningman84/zfs-list-tree/pkg/parser"
	"github.com/runningman84/zfs-list-tree/pkg/tree"
	"gotest.tools/v3/assert"
)

func buildTree(t *testing.T, lines ...string) *models.Tree {
	t.Helper()
	props := []string{"name", "used"}
	records, err := parser.ParseRecords(lines, []string{"name", "used", "type"})
	assert.NilError(t, err)
	tr, err := tree.Build(records, props, tree.WithLocation(time.UTC))
	assert.NilError(t, err)
	return tr
}

func TestPrint(t *testing.T) {
	tr := buildTree(t,
		"tank\t1024\tfilesystem",
		"tank@a\t0\tsnapshot",
		"pool\t-\tfilesystem",
	)
	geom := models.ViewGeometry{ColumnWidths: map[string]int{"name": 12, "used": 6}}

	var buf bytes.Buffer
	assert.NilError(t, Print(&buf, tr, geom))

	want := strings.Join([]string{
		"  name      " + columnGap + "  used",
		"▾ tank      " + columnGap + " 1.00K",
		"    tank@a  " + columnGap + "    0B",
		"  pool      " + columnGap + "     -",
	}, "\n") + "\n"
	assert.Equal(t, buf.String(), want)
}

package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/runningman84/zfs-list-tree/pkg/models"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type staticRefresher struct {
	tree *models.Tree
	err  error
}

func (r *staticRefresher) Refresh(_ context.Context, _ *models.Tree, _ func(*models.Node) bool) (*models.Tree, models.ExpansionSet, error) {
	return r.tree, models.ExpansionSet{}, r.err
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) Refresh(_ context.Context, old *models.Tree, _ func(*models.Node) bool) (*models.Tree, models.ExpansionSet, error) {
	r.calls++
	return old, models.ExpansionSet{}, nil
}

func sampleTree(t *testing.T) *models.Tree {
	return buildTree(t,
		"tank\t3000\tfilesystem",
		"tank@a\t0\tsnapshot",
		"tank@b\t0\tsnapshot",
		"pool\t1000\tfilesystem",
		"scratch\t2000\tfilesystem",
	)
}

func newTestView(t *testing.T) *View {
	t.Helper()
	return NewView(context.Background(), &staticRefresher{}, sampleTree(t), models.DefaultViewGeometry())
}

func rootOrder(v *View) []string {
	var names []string
	for _, tn := range v.treeView.GetRoot().GetChildren() {
		names = append(names, nodeOf(tn).Name)
	}
	return names
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestNewView(t *testing.T) {
	v := newTestView(t)

	assert.DeepEqual(t, rootOrder(v), []string{"tank", "pool", "scratch"})
	assert.Equal(t, v.Selected(), "tank")
	assert.Equal(t, v.layout.GetTitle(), " tank ")
	assert.Equal(t, v.status.GetText(false), helpText)
	assert.Assert(t, is.Contains(v.header.GetText(false), "name"))

	for name, tn := range v.roots {
		assert.Assert(t, !tn.IsExpanded(), "%s should start collapsed", name)
	}
	assert.Assert(t, strings.HasPrefix(v.roots["tank"].GetText(), markerCollapsed+"tank"))
	assert.Assert(t, strings.HasPrefix(v.roots["pool"].GetText(), markerLeaf+"pool"))
}

func TestToggle(t *testing.T) {
	v := newTestView(t)

	v.toggle(v.roots["tank"])
	assert.Assert(t, v.roots["tank"].IsExpanded())
	assert.Assert(t, strings.HasPrefix(v.roots["tank"].GetText(), markerExpanded+"tank"))
	assert.Assert(t, v.expandedSet().Has("tank"))

	v.toggle(v.roots["tank"])
	assert.Assert(t, !v.roots["tank"].IsExpanded())

	// filesystems without snapshots have nothing to show
	v.toggle(v.roots["pool"])
	assert.Assert(t, !v.roots["pool"].IsExpanded())

	// snapshots are never expandable
	v.toggle(v.roots["tank"].GetChildren()[0])
	assert.Assert(t, !v.roots["tank"].GetChildren()[0].IsExpanded())
}

func TestCycleSort(t *testing.T) {
	v := newTestView(t)

	v.cycleSort(1)
	assert.Equal(t, v.sortColumn, 0)
	assert.DeepEqual(t, rootOrder(v), []string{"pool", "scratch", "tank"})
	assert.Equal(t, v.status.GetText(false), "Sorted by name")

	v.cycleSort(1)
	assert.Equal(t, v.sortColumn, 1)
	assert.DeepEqual(t, rootOrder(v), []string{"pool", "scratch", "tank"})
	assert.Assert(t, is.Contains(v.header.GetText(false), "used ▲"))

	v.cycleSort(1)
	assert.Equal(t, v.sortColumn, -1)
	assert.DeepEqual(t, rootOrder(v), []string{"tank", "pool", "scratch"})
	assert.Equal(t, v.status.GetText(false), "Listing order")

	v.cycleSort(-1)
	assert.Equal(t, v.sortColumn, 1)
}

func TestSortKeepsExpansionAndSource(t *testing.T) {
	v := newTestView(t)
	source := v.source

	v.toggle(v.roots["tank"])
	assert.Assert(t, is.Nil(v.handleKey(key('s'))))
	assert.Assert(t, is.Nil(v.handleKey(key('s'))))
	assert.Assert(t, is.Nil(v.handleKey(key('i'))))

	assert.Assert(t, v.descending)
	assert.DeepEqual(t, rootOrder(v), []string{"tank", "scratch", "pool"})
	assert.Assert(t, v.roots["tank"].IsExpanded())
	assert.Assert(t, is.Contains(v.header.GetText(false), "used ▼"))

	// sorting never reorders the listed tree
	assert.Equal(t, v.source, source)
	assert.Equal(t, source.Roots[0].Name, "tank")
	assert.Equal(t, source.Roots[1].Name, "pool")
}

func TestResize(t *testing.T) {
	v := newTestView(t)

	assert.Assert(t, is.Nil(v.handleKey(key('>'))))
	assert.Equal(t, v.Geometry().ColumnWidths["name"], 37)

	v.cycleSort(1)
	v.cycleSort(1)
	v.handleKey(key('<'))
	assert.Equal(t, v.Geometry().ColumnWidths["used"], 8)
	// the name column keeps its width across a resort
	assert.Equal(t, v.Geometry().ColumnWidths["name"], 37)
}

func TestResizeClamps(t *testing.T) {
	geom := models.DefaultViewGeometry()
	geom.ColumnWidths["name"] = minColumnWidth
	v := NewView(context.Background(), &staticRefresher{}, sampleTree(t), geom)

	v.resize(-1)
	assert.Equal(t, v.Geometry().ColumnWidths["name"], minColumnWidth)
	assert.Equal(t, v.Geometry().Width, models.DefaultWidth)
	assert.Equal(t, v.Geometry().Height, models.DefaultHeight)
}

func TestFinishRefresh(t *testing.T) {
	v := newTestView(t)
	v.treeView.SetCurrentNode(v.roots["pool"])

	fresh := buildTree(t,
		"tank\t4000\tfilesystem",
		"tank@a\t0\tsnapshot",
		"tank@b\t0\tsnapshot",
		"tank@c\t0\tsnapshot",
		"pool\t1000\tfilesystem",
	)
	expanded := models.ExpansionSet{}
	expanded.Add("tank")
	expanded.Add("gone")

	v.refreshing = true
	v.finishRefresh(fresh, expanded, nil)

	assert.Assert(t, !v.refreshing)
	assert.Equal(t, v.source, fresh)
	assert.DeepEqual(t, rootOrder(v), []string{"tank", "pool"})
	assert.Assert(t, v.roots["tank"].IsExpanded())
	assert.Assert(t, is.Len(v.roots["tank"].GetChildren(), 3))
	assert.Equal(t, v.Selected(), "pool")
	assert.Equal(t, v.status.GetText(false), "Refreshed: 2 filesystem(s), 3 snapshot(s)")
}

func TestFinishRefreshError(t *testing.T) {
	v := newTestView(t)
	source := v.source
	v.toggle(v.roots["tank"])

	v.refreshing = true
	v.finishRefresh(nil, models.ExpansionSet{}, errors.New("zfs went away"))

	assert.Assert(t, !v.refreshing)
	assert.Equal(t, v.source, source)
	assert.Assert(t, v.roots["tank"].IsExpanded())
	assert.Equal(t, v.status.GetText(false), "Refresh failed: zfs went away")
}

func TestHandleKeyPassThrough(t *testing.T) {
	v := newTestView(t)

	down := tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	assert.Equal(t, v.handleKey(down), down)

	other := key('x')
	assert.Equal(t, v.handleKey(other), other)

	// quitting before Run is a no-op
	assert.Assert(t, is.Nil(v.handleKey(key('q'))))
}

func TestRefreshIgnoredWhileOutstanding(t *testing.T) {
	refresher := &countingRefresher{}
	v := NewView(context.Background(), refresher, sampleTree(t), models.DefaultViewGeometry())
	v.setStatus("Refreshing...")
	v.refreshing = true

	assert.Assert(t, is.Nil(v.handleKey(key('r'))))

	assert.Assert(t, v.refreshing)
	assert.Equal(t, v.status.GetText(false), "Refreshing...")
	assert.Equal(t, refresher.calls, 0)
}

package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/runningman84/zfs-list-tree/pkg/models"
	"github.com/runningman84/zfs-list-tree/pkg/tree"
	"k8s.io/klog/v2"
)

const helpText = "Enter/Space expand  r refresh  s/S sort column  i invert  </> width  q quit"

// Refresher fetches a new tree, reporting which filesystems of old were expanded
type Refresher interface {
	Refresh(ctx context.Context, old *models.Tree, isExpanded func(*models.Node) bool) (*models.Tree, models.ExpansionSet, error)
}

// View is the interactive inventory tree
type View struct {
	app      *tview.Application
	layout   *tview.Flex
	header   *tview.TextView
	treeView *tview.TreeView
	status   *tview.TextView

	refresher Refresher
	ctx       context.Context

	source     *models.Tree // as listed
	shown      *models.Tree // sorted for display
	roots      map[string]*tview.TreeNode
	columns    []columnLayout
	sortColumn int // -1 keeps listing order
	descending bool
	refreshing bool

	geometry models.ViewGeometry
}

// NewView builds the view for an already loaded tree. Nothing is drawn
// until Run is called.
func NewView(ctx context.Context, refresher Refresher, t *models.Tree, geom models.ViewGeometry) *View {
	v := &View{
		app:        tview.NewApplication(),
		header:     tview.NewTextView().SetDynamicColors(false).SetWrap(false),
		treeView:   tview.NewTreeView(),
		status:     tview.NewTextView().SetDynamicColors(false).SetWrap(false),
		refresher:  refresher,
		ctx:        ctx,
		sortColumn: -1,
		geometry:   geom,
	}
	if v.geometry.ColumnWidths == nil {
		v.geometry.ColumnWidths = map[string]int{}
	}

	v.treeView.SetGraphics(false).SetAlign(true).SetTopLevel(1)
	v.treeView.SetSelectedFunc(func(node *tview.TreeNode) {
		v.toggle(node)
	})
	v.treeView.SetChangedFunc(func(node *tview.TreeNode) {
		v.showSelection(node)
	})

	v.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(v.treeView, 0, 1, true).
		AddItem(v.status, 1, 0, false)
	v.layout.SetBorder(true)

	v.app.SetRoot(v.layout, true).SetFocus(v.treeView)
	v.app.SetInputCapture(v.handleKey)
	v.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		v.geometry.Width, v.geometry.Height = screen.Size()
		return false
	})

	v.setTree(t, models.ExpansionSet{})
	v.setStatus(helpText)
	return v
}

// Run shows the view until the user quits and returns the geometry to persist
func (v *View) Run() (models.ViewGeometry, error) {
	if err := v.app.Run(); err != nil {
		return v.Geometry(), fmt.Errorf("terminal UI failed: %w", err)
	}
	return v.Geometry(), nil
}

// Geometry returns the current screen size and column widths
func (v *View) Geometry() models.ViewGeometry {
	geom := models.ViewGeometry{
		Width:        v.geometry.Width,
		Height:       v.geometry.Height,
		ColumnWidths: make(map[string]int, len(v.geometry.ColumnWidths)+len(v.columns)),
	}
	for label, w := range v.geometry.ColumnWidths {
		geom.ColumnWidths[label] = w
	}
	for _, col := range v.columns {
		geom.ColumnWidths[col.label] = col.width
	}
	return geom
}

// Selected returns the name of the highlighted entry
func (v *View) Selected() string {
	if node := nodeOf(v.treeView.GetCurrentNode()); node != nil {
		return node.Name
	}
	return ""
}

// setTree replaces the displayed tree and expands the filesystems in expanded
func (v *View) setTree(t *models.Tree, expanded models.ExpansionSet) {
	selected := v.Selected()
	v.source = t
	v.columns = newLayout(t.Columns, v.geometry)
	if v.sortColumn >= len(t.Columns) {
		v.sortColumn = -1
	}
	v.shown = tree.Sort(t, v.sortColumn, v.descending)

	root := tview.NewTreeNode("")
	v.roots = make(map[string]*tview.TreeNode, len(v.shown.Roots))
	for _, fs := range v.shown.Roots {
		fsNode := tview.NewTreeNode("").SetReference(fs).SetExpanded(false)
		for _, snap := range fs.Children {
			fsNode.AddChild(tview.NewTreeNode("").SetReference(snap).SetExpanded(false))
		}
		root.AddChild(fsNode)
		v.roots[fs.Name] = fsNode
	}

	tree.ApplyExpansion(v.shown, expanded, func(n *models.Node) {
		v.roots[n.Name].SetExpanded(true)
	})

	v.treeView.SetRoot(root)
	v.renderRows()
	v.restoreSelection(root, selected)

	if len(v.shown.Roots) > 0 {
		// the window title is the first filesystem in listing order
		v.layout.SetTitle(" " + tview.Escape(t.Roots[0].Name) + " ")
	}
}

func (v *View) restoreSelection(root *tview.TreeNode, name string) {
	var target *tview.TreeNode
	root.Walk(func(node, parent *tview.TreeNode) bool {
		if target != nil {
			return false
		}
		if n := nodeOf(node); n != nil && n.Name == name {
			if parent == root || parent.IsExpanded() {
				target = node
			} else {
				target = parent
			}
		}
		return true
	})
	if target == nil && len(root.GetChildren()) > 0 {
		target = root.GetChildren()[0]
	}
	if target != nil {
		v.treeView.SetCurrentNode(target)
	}
}

// renderRows rewrites the header and every node's text from the current layout
func (v *View) renderRows() {
	v.header.SetText(formatCells(headerCells(v.columns, v.sortColumn, v.descending), v.columns))
	for _, fsNode := range v.treeView.GetRoot().GetChildren() {
		v.renderNode(fsNode)
		for _, snapNode := range fsNode.GetChildren() {
			v.renderNode(snapNode)
		}
	}
}

func (v *View) renderNode(tn *tview.TreeNode) {
	node := nodeOf(tn)
	if node == nil {
		return
	}
	tn.SetText(tview.Escape(formatCells(rowCells(node, v.shown.Columns, tn.IsExpanded()), v.columns)))
}

// isExpanded reports whether a filesystem's snapshots are visible
func (v *View) isExpanded(n *models.Node) bool {
	tn, ok := v.roots[n.Name]
	return ok && tn.IsExpanded()
}

// expandedSet captures the current expansion state
func (v *View) expandedSet() models.ExpansionSet {
	return tree.CaptureExpansion(v.shown, v.isExpanded)
}

func (v *View) toggle(tn *tview.TreeNode) {
	node := nodeOf(tn)
	if node == nil || node.Kind != models.KindFilesystem || len(node.Children) == 0 {
		return
	}
	tn.SetExpanded(!tn.IsExpanded())
	v.renderNode(tn)
}

func (v *View) showSelection(tn *tview.TreeNode) {
	node := nodeOf(tn)
	if node == nil {
		return
	}
	if node.Kind == models.KindFilesystem {
		v.setStatus(fmt.Sprintf("%s (%d snapshot(s))", node.Name, len(node.Children)))
		return
	}
	v.setStatus(node.Name)
}

func (v *View) setStatus(text string) {
	v.status.SetText(text)
}

// resort redisplays the current tree under the current sort settings
func (v *View) resort() {
	v.setTree(v.source, v.expandedSet())
}

func (v *View) cycleSort(step int) {
	n := len(v.columns)
	if n == 0 {
		return
	}
	// -1 (listing order) takes part in the cycle
	v.sortColumn = (v.sortColumn+1+step+n+1)%(n+1) - 1
	v.resort()
	if v.sortColumn < 0 {
		v.setStatus("Listing order")
	} else {
		v.setStatus("Sorted by " + v.columns[v.sortColumn].label)
	}
}

// resize changes the width of the sort column, or the name column when unsorted
func (v *View) resize(delta int) {
	if len(v.columns) == 0 {
		return
	}
	col := v.sortColumn
	if col < 0 {
		col = 0
	}
	v.columns[col].width = clampWidth(v.columns[col].width + delta)
	v.geometry.ColumnWidths[v.columns[col].label] = v.columns[col].width
	v.renderRows()
}

// refresh fetches a new tree in the background and swaps it in on the UI goroutine
func (v *View) refresh() {
	if v.refreshing {
		return
	}
	v.refreshing = true
	v.setStatus("Refreshing...")

	old := v.source
	expanded := v.expandedSet()
	go func() {
		t, set, err := v.refresher.Refresh(v.ctx, old, func(n *models.Node) bool {
			return expanded.Has(n.Name)
		})
		v.app.QueueUpdateDraw(func() {
			v.finishRefresh(t, set, err)
		})
	}()
}

func (v *View) finishRefresh(t *models.Tree, expanded models.ExpansionSet, err error) {
	v.refreshing = false
	if err != nil {
		klog.Errorf("Refresh failed: %v", err)
		v.setStatus(fmt.Sprintf("Refresh failed: %v", err))
		return
	}
	v.setTree(t, expanded)
	filesystems, snapshots := t.Counts()
	v.setStatus(fmt.Sprintf("Refreshed: %d filesystem(s), %d snapshot(s)", filesystems, snapshots))
}

func (v *View) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		v.app.Stop()
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'q':
		v.app.Stop()
	case 'r':
		v.refresh()
	case 's':
		v.cycleSort(1)
	case 'S':
		v.cycleSort(-1)
	case 'i':
		v.descending = !v.descending
		v.resort()
	case '<':
		v.resize(-1)
	case '>':
		v.resize(1)
	case ' ':
		v.toggle(v.treeView.GetCurrentNode())
	default:
		return event
	}
	return nil
}

func nodeOf(tn *tview.TreeNode) *models.Node {
	if tn == nil {
		return nil
	}
	node, _ := tn.GetReference().(*models.Node)
	return node
}

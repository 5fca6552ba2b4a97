package models

// Kind distinguishes the entry types reported in the trailing type column of zfs list
type Kind string

const (
	KindFilesystem Kind = "filesystem"
	KindSnapshot   Kind = "snapshot"
	KindVolume     Kind = "volume"
	KindBookmark   Kind = "bookmark"
)

// Absent is the value zfs list prints for a property that has no value
const Absent = "-"

// RawRecord is one tab-delimited line of zfs list output
type RawRecord struct {
	Line   int      // 1-based position in the command output
	Fields []string // one field per schema property, type last
}

// Value is a single cell of a node row: display text or a numeric sort key
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// Text returns a display value
func Text(s string) Value {
	return Value{Text: s}
}

// Number returns a sort key value
func Number(n float64) Value {
	return Value{Number: n, Numeric: true}
}

// ColumnType tags a column descriptor
type ColumnType int

const (
	// Plain columns occupy one row slot that is both shown and sorted on
	Plain ColumnType = iota
	// DisplayWithSortKey columns occupy two adjacent slots: display text, then sort key
	DisplayWithSortKey
)

// Column describes where a property's values live in a node row
type Column struct {
	Property     string
	Type         ColumnType
	DisplayIndex int
	SortIndex    int
}

// Node is a filesystem or snapshot entry
type Node struct {
	Name     string
	Kind     Kind
	Values   []Value
	Children []*Node
}

// Display returns the text shown for the given column
func (n *Node) Display(col Column) string {
	if col.DisplayIndex < 0 || col.DisplayIndex >= len(n.Values) {
		return ""
	}
	return n.Values[col.DisplayIndex].Text
}

// SortKey returns the value a column sorts on
func (n *Node) SortKey(col Column) Value {
	if col.SortIndex < 0 || col.SortIndex >= len(n.Values) {
		return Value{}
	}
	return n.Values[col.SortIndex]
}

// Tree is an ordered forest of filesystem nodes with their snapshots
type Tree struct {
	Columns []Column
	Roots   []*Node
}

// Find returns the root node with the given name
func (t *Tree) Find(name string) *Node {
	for _, root := range t.Roots {
		if root.Name == name {
			return root
		}
	}
	return nil
}

// Counts returns the number of filesystems and snapshots in the tree
func (t *Tree) Counts() (filesystems, snapshots int) {
	for _, root := range t.Roots {
		filesystems++
		snapshots += len(root.Children)
	}
	return filesystems, snapshots
}

// ExpansionSet holds the names of filesystems whose snapshots are visible
type ExpansionSet map[string]struct{}

// Add records a name as expanded
func (s ExpansionSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether a name is expanded
func (s ExpansionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Default window dimensions used when no view state has been saved
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// ViewGeometry is the persisted window size and column widths. All values are
// terminal cells; the 800x600 defaults are only placeholders until the first draw.
type ViewGeometry struct {
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	ColumnWidths map[string]int `yaml:"column_widths,omitempty"`
}

// DefaultViewGeometry returns the geometry used on first start
func DefaultViewGeometry() ViewGeometry {
	return ViewGeometry{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		ColumnWidths: map[string]int{},
	}
}

// ColumnWidth returns the stored width for a column label, or fallback
func (g ViewGeometry) ColumnWidth(label string, fallback int) int {
	if w, ok := g.ColumnWidths[label]; ok && w > 0 {
		return w
	}
	return fallback
}

package schema

import (
	"strings"

	"github.com/runningman84/zfs-list-tree/pkg/models"
)

// DefaultProperties is the property list used when none is given
const DefaultProperties = "name,used,avail,refer,mountpoint"

// NameProperty is the identity property, always first in a schema
const NameProperty = "name"

// TypeProperty is appended to every zfs list invocation to tell filesystems from snapshots
const TypeProperty = "type"

// Category determines how a property's raw value is interpreted
type Category int

const (
	CategoryPlain Category = iota
	CategorySize
	CategoryTimestamp
)

// SizeProperties are reported by zfs list -p as raw byte counts
var SizeProperties = []string{
	"used",
	"usedbychildren",
	"usedbydataset",
	"usedbysnapshots",
	"available",
	"referenced",
}

var aliases = map[string]string{
	"avail": "available",
	"refer": "referenced",
	"ratio": "compressratio",
}

// Classify returns the category of a property
func Classify(prop string) Category {
	if prop == "creation" {
		return CategoryTimestamp
	}
	for _, p := range SizeProperties {
		if p == prop {
			return CategorySize
		}
	}
	return CategoryPlain
}

// Normalize turns a comma-separated property list into a schema: aliases are
// resolved, blanks and duplicates dropped, and name always placed first.
func Normalize(raw string) []string {
	parts := strings.Split(raw, ",")
	props := make([]string, 0, len(parts)+1)
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if full, ok := aliases[p]; ok {
			p = full
		}
		if seen[p] || p == NameProperty {
			continue
		}
		seen[p] = true
		props = append(props, p)
	}

	return append([]string{NameProperty}, props...)
}

// WithType returns the schema as passed to zfs list, with the type column appended
func WithType(props []string) []string {
	out := make([]string, 0, len(props)+1)
	out = append(out, props...)
	return append(out, TypeProperty)
}

// Columns derives the row layout for a schema. Size and timestamp
// properties take two slots, display text followed by sort key.
func Columns(props []string) []models.Column {
	cols := make([]models.Column, 0, len(props))
	index := 0
	for _, prop := range props {
		if Classify(prop) == CategoryPlain {
			cols = append(cols, models.Column{
				Property:     prop,
				Type:         models.Plain,
				DisplayIndex: index,
				SortIndex:    index,
			})
			index++
			continue
		}
		cols = append(cols, models.Column{
			Property:     prop,
			Type:         models.DisplayWithSortKey,
			DisplayIndex: index,
			SortIndex:    index + 1,
		})
		index += 2
	}
	return cols
}

// RowWidth returns the number of row slots a layout occupies
func RowWidth(cols []models.Column) int {
	width := 0
	for _, col := range cols {
		if col.Type == models.DisplayWithSortKey {
			width += 2
		} else {
			width++
		}
	}
	return width
}

// LeftAligned reports whether a column's text reads left to right rather than as a number
func LeftAligned(prop string) bool {
	switch prop {
	case NameProperty, "mountpoint", "creation":
		return true
	}
	return false
}

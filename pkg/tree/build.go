package tree

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/runningman84/zfs-list-tree/pkg/models"
	"github.com/runningman84/zfs-list-tree/pkg/parser"
	"github.com/runningman84/zfs-list-tree/pkg/schema"
	"github.com/runningman84/zfs-list-tree/pkg/units"
	"k8s.io/klog/v2"
)

// TimestampLayout renders creation times, e.g. "Mon Jan 15 10:00 2024"
const TimestampLayout = "Mon Jan 02 15:04 2006"

// ErrMalformedHierarchy is returned when a snapshot has no owning filesystem
var ErrMalformedHierarchy = errors.New("malformed hierarchy")

// MalformedHierarchyError identifies the snapshot that appeared before any filesystem
type MalformedHierarchyError struct {
	Line int
	Name string
}

func (e *MalformedHierarchyError) Error() string {
	return fmt.Sprintf("malformed hierarchy on line %d: snapshot %s has no preceding filesystem", e.Line, e.Name)
}

// Is makes errors.Is(err, ErrMalformedHierarchy) hold
func (e *MalformedHierarchyError) Is(target error) bool {
	return target == ErrMalformedHierarchy
}

type buildOptions struct {
	location *time.Location
}

// BuildOption customizes Build
type BuildOption func(*buildOptions)

// WithLocation sets the time zone creation timestamps are rendered in
func WithLocation(loc *time.Location) BuildOption {
	return func(o *buildOptions) {
		o.location = loc
	}
}

// Build folds a flat record stream into a tree. props is the schema without
// the trailing type; each record carries one more field than props.
//
// The stream must list every filesystem immediately followed by its own
// snapshots, which is the order zfs list -r produces. A snapshot is owned by
// the nearest filesystem before it; names are never inspected. A snapshot
// with no filesystem before it is an error. Volume and bookmark rows are
// skipped without changing the owner, so a volume's snapshots land under the
// filesystem listed before the volume.
func Build(records []models.RawRecord, props []string, opts ...BuildOption) (*models.Tree, error) {
	o := buildOptions{location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	t := &models.Tree{Columns: schema.Columns(props)}
	width := schema.RowWidth(t.Columns)

	var owner *models.Node
	for _, rec := range records {
		if len(rec.Fields) != len(props)+1 {
			return nil, &parser.MalformedRecordError{
				Line: rec.Line,
				Got:  len(rec.Fields),
				Want: len(props) + 1,
			}
		}

		kind := models.Kind(rec.Fields[len(props)])
		if kind != models.KindFilesystem && kind != models.KindSnapshot {
			klog.V(1).Infof("Skipping %s %s on line %d", kind, rec.Fields[0], rec.Line)
			continue
		}

		node, err := buildNode(rec, props, width, kind, o.location)
		if err != nil {
			return nil, err
		}

		switch kind {
		case models.KindFilesystem:
			t.Roots = append(t.Roots, node)
			owner = node
		case models.KindSnapshot:
			if owner == nil {
				return nil, &MalformedHierarchyError{Line: rec.Line, Name: node.Name}
			}
			owner.Children = append(owner.Children, node)
		}
	}

	return t, nil
}

func buildNode(rec models.RawRecord, props []string, width int, kind models.Kind, loc *time.Location) (*models.Node, error) {
	node := &models.Node{
		Kind:   kind,
		Values: make([]models.Value, 0, width),
	}

	for i, prop := range props {
		raw := rec.Fields[i]
		if prop == schema.NameProperty {
			node.Name = raw
		}

		switch schema.Classify(prop) {
		case schema.CategorySize:
			if raw == models.Absent {
				node.Values = append(node.Values, models.Text(models.Absent), models.Number(0))
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				return nil, &parser.MalformedRecordError{Line: rec.Line, Property: prop, Value: raw}
			}
			node.Values = append(node.Values, models.Text(units.HumanReadable(n, true)), models.Number(float64(n)))
		case schema.CategoryTimestamp:
			if raw == models.Absent {
				node.Values = append(node.Values, models.Text(models.Absent), models.Number(0))
				continue
			}
			epoch, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, &parser.MalformedRecordError{Line: rec.Line, Property: prop, Value: raw}
			}
			display := time.Unix(epoch, 0).In(loc).Format(TimestampLayout)
			node.Values = append(node.Values, models.Text(display), models.Number(float64(epoch)))
		default:
			node.Values = append(node.Values, models.Text(raw))
		}
	}

	return node, nil
}

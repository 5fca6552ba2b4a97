package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/runningman84/zfs-list-tree/pkg/config"
	"github.com/runningman84/zfs-list-tree/pkg/models"
	"github.com/runningman84/zfs-list-tree/pkg/parser"
	"github.com/runningman84/zfs-list-tree/pkg/schema"
	"github.com/runningman84/zfs-list-tree/pkg/tree"
	"github.com/runningman84/zfs-list-tree/pkg/zfs"
	"k8s.io/klog/v2"
)

// Browser runs the fetch, parse and build cycle that produces an inventory tree
type Browser struct {
	config    *config.Config
	manager   *zfs.Manager
	buildOpts []tree.BuildOption
}

// NewBrowser creates a new browser instance
func NewBrowser(cfg *config.Config, opts ...tree.BuildOption) *Browser {
	return &Browser{
		config:    cfg,
		manager:   zfs.NewManager(cfg),
		buildOpts: opts,
	}
}

// Properties returns the schema the browser lists, name first
func (b *Browser) Properties() []string {
	return b.config.Properties
}

// Load lists the inventory and builds a fresh tree. Any failure aborts the
// whole cycle; no partial tree is returned.
func (b *Browser) Load(ctx context.Context) (*models.Tree, error) {
	lines, err := b.manager.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	records, err := parser.ParseRecords(lines, schema.WithType(b.config.Properties))
	if err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}

	t, err := tree.Build(records, b.config.Properties, b.buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory tree: %w", err)
	}
	if len(t.Roots) == 0 {
		return nil, fmt.Errorf("failed to build inventory tree: %w: listing holds no filesystem", zfs.ErrEmptyInventory)
	}

	b.logInventory(t)
	return t, nil
}

// Refresh captures which filesystems of old are expanded, then loads a new
// tree. The caller applies the returned set to the new tree with
// tree.ApplyExpansion. On error old remains the tree to show.
func (b *Browser) Refresh(ctx context.Context, old *models.Tree, isExpanded func(*models.Node) bool) (*models.Tree, models.ExpansionSet, error) {
	expanded := tree.CaptureExpansion(old, isExpanded)
	klog.V(1).Infof("Refreshing with %d expanded filesystem(s)", len(expanded))

	t, err := b.Load(ctx)
	if err != nil {
		return nil, expanded, err
	}
	return t, expanded, nil
}

// LogVersion logs the ZFS version; failure is not fatal
func (b *Browser) LogVersion(ctx context.Context) {
	userland, kernel, err := b.manager.GetVersion(ctx)
	if err != nil {
		klog.Warningf("Could not determine ZFS version: %v", err)
		return
	}
	klog.Infof("ZFS Version - Userland: %s, Kernel: %s", userland, kernel)
}

// LogConfig logs the effective configuration
func (b *Browser) LogConfig() {
	klog.Info("Current config")
	klog.Infof("Mode: %s", b.config.Mode)
	klog.Infof("Log level: %s", b.config.LogLevel)
	klog.Infof("Properties: %s", strings.Join(b.config.Properties, ","))
	if b.config.Filesystem != "" {
		klog.Infof("Filesystem: %s", b.config.Filesystem)
	} else {
		klog.Infof("Filesystem: all filesystems")
	}
	klog.Infof("List timeout: %s", b.config.ListTimeout)
	klog.Infof("State file: %s", b.config.StateFile)
}

func (b *Browser) logInventory(t *models.Tree) {
	filesystems, snapshots := t.Counts()
	klog.Infof("Loaded %d filesystem(s) with %d snapshot(s)", filesystems, snapshots)

	if !b.config.IsDebug() {
		return
	}
	for _, root := range t.Roots {
		logFilesystemUsage(t, root)
	}
}

// logFilesystemUsage logs used and available space when both columns are shown
func logFilesystemUsage(t *models.Tree, node *models.Node) {
	usedCol, ok := findColumn(t, "used")
	if !ok {
		return
	}
	availCol, ok := findColumn(t, "available")
	if !ok {
		return
	}

	used := node.SortKey(usedCol).Number
	avail := node.SortKey(availCol).Number
	if used > 0 && avail > 0 {
		percent := used / (used + avail) * 100
		klog.V(1).Infof("Filesystem %s usage: %s used, %s available (%.1f%%)",
			node.Name, node.Display(usedCol), node.Display(availCol), percent)
	} else {
		klog.V(1).Infof("Filesystem %s usage: %s used, %s available",
			node.Name, node.Display(usedCol), node.Display(availCol))
	}
}

func findColumn(t *models.Tree, prop string) (models.Column, bool) {
	for _, col := range t.Columns {
		if col.Property == prop {
			return col, true
		}
	}
	return models.Column{}, false
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/runningman84/zfs-list-tree/pkg/schema"
)

const (
	stateFileName = "zfs-list-tree.yaml"
	logFileName   = "zfs-list-tree.log"
)

// Config holds the application configuration
type Config struct {
	Mode     string // "test", "direct", or "chroot"
	LogLevel string // "info" or "debug"

	// Properties is the normalized schema shown as columns, name first
	Properties []string
	// Filesystem restricts the listing to one dataset and its descendants
	Filesystem string

	// ListTimeout bounds every zfs invocation
	ListTimeout time.Duration

	// StateFile holds the persisted window size and column widths
	StateFile string
	// LogFile receives log output while the terminal UI owns the screen
	LogFile string

	// Commands
	ZFSListCmd    []string
	ZFSVersionCmd []string
}

// NewConfig creates a new configuration with default values
func NewConfig(mode string) *Config {
	stateFile := getEnvAsString("ZFS_LIST_TREE_STATE", defaultStateFile())
	cfg := &Config{
		Mode:        mode,
		LogLevel:    "info",
		Properties:  schema.Normalize(getEnvAsString("ZFS_LIST_PROPERTIES", schema.DefaultProperties)),
		ListTimeout: getEnvAsDuration("ZFS_LIST_TIMEOUT", 30*time.Second),
		StateFile:   stateFile,
		LogFile:     getEnvAsString("ZFS_LIST_TREE_LOG", filepath.Join(filepath.Dir(stateFile), logFileName)),
	}

	switch mode {
	case "test":
		cfg.ZFSListCmd = []string{"cat", "test/zfs_list.txt"}
		cfg.ZFSVersionCmd = []string{"cat", "test/zfs_version.json"}
	case "chroot":
		zfsBin := []string{"chroot", "/host", "/usr/local/sbin/zfs"}
		cfg.ZFSListCmd = append(append([]string{}, zfsBin...), "list", "-Hrpt", "all", "-o")
		cfg.ZFSVersionCmd = append(append([]string{}, zfsBin...), "version", "-j")
	default:
		// Direct mode: use zfs from PATH
		cfg.ZFSListCmd = []string{"zfs", "list", "-Hrpt", "all", "-o"}
		cfg.ZFSVersionCmd = []string{"zfs", "version", "-j"}
	}

	return cfg
}

// ErrFixedProperties is returned when test mode is asked for columns other
// than the ones recorded in its fixture
var ErrFixedProperties = errors.New("test mode replays a fixture with fixed properties")

// Validate checks settings that cannot work together
func (c *Config) Validate() error {
	if c.Mode == "test" {
		want := schema.Normalize(schema.DefaultProperties)
		if !slices.Equal(c.Properties, want) {
			return fmt.Errorf("%w: got %s, want %s", ErrFixedProperties,
				strings.Join(c.Properties, ","), strings.Join(want, ","))
		}
	}
	return nil
}

// IsDebug returns true if log level is set to debug
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// ListCommand returns the full zfs list invocation: the property list with
// the type column appended, then the optional filesystem. Test mode replays
// a fixture and ignores both.
func (c *Config) ListCommand() []string {
	cmd := append([]string{}, c.ZFSListCmd...)
	if c.Mode == "test" {
		return cmd
	}
	cmd = append(cmd, strings.Join(schema.WithType(c.Properties), ","))
	if c.Filesystem != "" {
		cmd = append(cmd, c.Filesystem)
	}
	return cmd
}

// SetProperties replaces the schema from a comma-separated property list
func (c *Config) SetProperties(raw string) {
	c.Properties = schema.Normalize(raw)
}

// defaultStateFile prefers $XDG_CONFIG_HOME, then ~/.config when it exists,
// then a dotfile in the home directory.
func defaultStateFile() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, stateFileName)
	}

	home := os.Getenv("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	configDir := filepath.Join(home, ".config")
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		return filepath.Join(configDir, stateFileName)
	}
	return filepath.Join(home, "."+stateFileName)
}

// getEnvAsString reads an environment variable, or returns the default value if not set
func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration reads an environment variable as a duration ("45s", "2m")
// or a plain number of seconds, returning the default value if not set,
// invalid, or not positive
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(valueStr); err == nil {
		if seconds <= 0 {
			return defaultValue
		}
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

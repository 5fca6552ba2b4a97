package zfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/runningman84/zfs-list-tree/pkg/config"
	"github.com/runningman84/zfs-list-tree/pkg/parser"
	"k8s.io/klog/v2"
)

var (
	// ErrSourceUnavailable means zfs could not be run, failed, or timed out
	ErrSourceUnavailable = errors.New("zfs list unavailable")
	// ErrEmptyInventory means zfs ran successfully but listed nothing
	ErrEmptyInventory = errors.New("no zfs filesystems")
)

// Manager runs read-only zfs commands
type Manager struct {
	config *config.Config
}

// NewManager creates a new ZFS manager
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// logCommand logs the command being executed if debug mode is enabled
func (m *Manager) logCommand(cmdArgs []string) {
	if m.config.IsDebug() {
		klog.V(1).Infof(" Executing command: %v", cmdArgs)
	}
}

// logCommandResult logs the command result if debug mode is enabled
func (m *Manager) logCommandResult(exitCode int, stdout, stderr []byte) {
	if m.config.IsDebug() {
		klog.V(1).Infof(" Exit code: %d", exitCode)
		if len(stdout) > 0 {
			klog.V(1).Infof(" stdout: %s", string(stdout))
		}
		if len(stderr) > 0 {
			klog.V(1).Infof(" stderr: %s", string(stderr))
		}
	}
}

// run executes a command under the configured timeout and returns its stdout
func (m *Manager) run(ctx context.Context, cmdArgs []string) ([]byte, error) {
	if len(cmdArgs) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSourceUnavailable)
	}

	if m.config.ListTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ListTimeout)
		defer cancel()
	}

	m.logCommand(cmdArgs)
	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		}
		m.logCommandResult(exitCode, stdout.Bytes(), stderr.Bytes())

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %v", ErrSourceUnavailable, cmdArgs[0], m.config.ListTimeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: command failed: %v (%s)", ErrSourceUnavailable, err, msg)
		}
		return nil, fmt.Errorf("%w: command failed: %v", ErrSourceUnavailable, err)
	}
	m.logCommandResult(0, stdout.Bytes(), stderr.Bytes())

	return stdout.Bytes(), nil
}

// List runs zfs list and returns its output lines
func (m *Manager) List(ctx context.Context) ([]string, error) {
	output, err := m.run(ctx, m.config.ListCommand())
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(string(output)) == "" {
		return nil, ErrEmptyInventory
	}

	return parser.SplitLines(output), nil
}

// GetVersion retrieves ZFS userland and kernel versions
func (m *Manager) GetVersion(ctx context.Context) (string, string, error) {
	output, err := m.run(ctx, m.config.ZFSVersionCmd)
	if err != nil {
		return "", "", fmt.Errorf("zfs version command failed: %w", err)
	}

	info, err := parser.ParseVersionJSON(output)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse version JSON: %w", err)
	}

	return info.Userland, info.Kernel, nil
}

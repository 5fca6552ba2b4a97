package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-logr/zapr"
	"github.com/runningman84/zfs-list-tree/pkg/browser"
	"github.com/runningman84/zfs-list-tree/pkg/config"
	"github.com/runningman84/zfs-list-tree/pkg/schema"
	"github.com/runningman84/zfs-list-tree/pkg/ui"
	"github.com/runningman84/zfs-list-tree/pkg/viewstate"
	"go.uber.org/zap"
	"k8s.io/klog/v2"
)

// Version can be set at build time using -ldflags
// Example: go build -ldflags="-X main.Version=1.0.0"
var Version = "dev"

func main() {
	klog.InitFlags(nil)

	properties := flag.String("o", "", "Comma-separated properties to show (default \""+schema.DefaultProperties+"\")")
	mode := flag.String("mode", "direct", "Operation mode: test, direct, or chroot (test replays test/zfs_list.txt and only accepts the default properties)")
	logLevel := flag.String("log-level", "info", "Log level: info or debug")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	logFile := flag.String("log-file", "", "Log file used while the terminal UI is running")
	stateFile := flag.String("state-file", "", "File holding the saved window size and column widths")
	timeout := flag.Duration("timeout", 0, "Timeout for each zfs invocation (default 30s)")
	printOnly := flag.Bool("print", false, "Print the whole tree to stdout instead of starting the terminal UI")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [filesystem]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("zfs-list-tree version %s\n", Version)
		return
	}

	if *mode != "test" && *mode != "direct" && *mode != "chroot" {
		klog.Fatalf("Invalid mode: %s. Must be one of: test, direct, chroot", *mode)
	}
	if *logLevel != "info" && *logLevel != "debug" {
		klog.Fatalf("Invalid log level: %s. Must be one of: info, debug", *logLevel)
	}
	if *logFormat != "text" && *logFormat != "json" {
		klog.Fatalf("Invalid log format: %s. Must be one of: text, json", *logFormat)
	}
	if flag.NArg() > 1 {
		klog.Fatalf("Expected at most one filesystem, got %d arguments", flag.NArg())
	}

	cfg := config.NewConfig(*mode)
	cfg.LogLevel = *logLevel
	if *properties != "" {
		cfg.SetProperties(*properties)
	}
	cfg.Filesystem = flag.Arg(0)
	if *timeout > 0 {
		cfg.ListTimeout = *timeout
	}
	if *stateFile != "" {
		cfg.StateFile = *stateFile
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	if err := cfg.Validate(); err != nil {
		klog.Fatalf("Invalid configuration: %v", err)
	}

	if *logLevel == "debug" {
		_ = flag.Set("v", "1")
	}

	// the terminal UI owns the screen, so logs go to a file
	logPath := ""
	if !*printOnly {
		logPath = cfg.LogFile
	}
	closeLog, err := setupLogging(*logFormat, *logLevel, logPath)
	if err != nil {
		klog.Fatalf("Failed to initialize logging: %v", err)
	}
	defer closeLog()

	klog.Infof("Starting zfs-list-tree version %s in %s mode with %s log level (pid %d)", Version, *mode, *logLevel, os.Getpid())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := browser.NewBrowser(cfg)
	b.LogConfig()
	b.LogVersion(ctx)

	t, err := b.Load(ctx)
	if err != nil {
		klog.Fatalf("Could not load inventory: %v", err)
	}

	store := viewstate.NewStore(cfg.StateFile)
	geom, err := store.Load()
	if err != nil {
		klog.Warningf("Using default view geometry: %v", err)
	}

	if *printOnly {
		if err := ui.Print(os.Stdout, t, geom); err != nil {
			klog.Fatalf("Failed to print inventory: %v", err)
		}
		klog.Flush()
		return
	}

	view := ui.NewView(ctx, b, t, geom)
	geom, err = view.Run()
	if err != nil {
		klog.Errorf("%v", err)
	}
	if err := store.Save(geom); err != nil {
		klog.Errorf("Failed to save view state: %v", err)
	} else {
		klog.Infof("Saved view state to %s", cfg.StateFile)
	}

	klog.Flush()
}

// setupLogging routes klog to path when it is set, and through zap when the
// format is json. The returned func flushes and closes the log.
func setupLogging(format, level, path string) (func(), error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if format == "json" {
		zapCfg := zap.NewProductionConfig()
		if level == "debug" {
			zapCfg = zap.NewDevelopmentConfig()
			zapCfg.Encoding = "json"
		}
		if path != "" {
			zapCfg.OutputPaths = []string{path}
			zapCfg.ErrorOutputPaths = []string{path}
		}
		zapLog, err := zapCfg.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JSON logger: %w", err)
		}
		klog.SetLogger(zapr.NewLogger(zapLog))
		return func() {
			klog.Flush()
			_ = zapLog.Sync()
		}, nil
	}

	if path == "" {
		return klog.Flush, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	klog.LogToStderr(false)
	klog.SetOutput(f)
	return func() {
		klog.Flush()
		_ = f.Close()
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/netgraph-go/internal/ack"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/ctxlog"
	"github.com/lex00/netgraph-go/internal/lint"
)

type watchOptions struct {
	lintOnly bool
	debounce time.Duration
	build    buildOptions
}

// newWatchCmd creates the "watch" subcommand for rebuilding on config changes.
func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Lint and rebuild whenever the config file changes",
		Long: `Watch monitors the config file and, on every change:
  - reloads and validates the config
  - runs lint
  - rebuilds if lint found no errors (unless --lint-only)

Rapid successive writes are debounced.

Examples:
    netgraph watch -c stack.yaml -o template.json
    netgraph watch -c stack.hcl -f ack --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.configPath == "" {
				return errors.New("watch requires --config")
			}
			return runWatch(cmd, root.configPath, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.lintOnly, "lint-only", false, "Only run lint, skip build")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&opts.build.format, "format", "f", "json", "Output format for build: json, yaml, ack or plan")
	cmd.Flags().StringVarP(&opts.build.output, "output", "o", "", "Output file for build (default: stdout)")
	opts.build.namespace = ack.DefaultNamespace

	return cmd
}

// runWatch rebuilds configPath on every write until the command is interrupted.
func runWatch(cmd *cobra.Command, configPath string, opts watchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := ctxlog.FromContext(ctx)

	target, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	log.Info("Watching config.", "path", target)

	rebuild(ctx, cmd, configPath, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigChange(event, target) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			log.Info("Change detected, rebuilding.", "path", target)
			rebuild(ctx, cmd, configPath, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watch error.", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			log.Info("Stopping watch.")
			return nil
		}
	}
}

func isConfigChange(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// rebuild runs one load, lint and build cycle. Failures are reported and the
// watch continues.
func rebuild(ctx context.Context, cmd *cobra.Command, configPath string, opts watchOptions) {
	log := ctxlog.FromContext(ctx)
	errOut := cmd.ErrOrStderr()

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Config error: %v\n", err)
		return
	}

	result := lint.Lint(cfg, lint.Options{File: configPath})
	for _, issue := range result.Issues {
		fmt.Fprintf(errOut, "%s: %s: %s [%s]\n", issue.File, issue.Severity, issue.Message, issue.Rule)
	}
	if !result.Success {
		fmt.Fprintln(errOut, "Lint failed, skipping build.")
		return
	}
	if opts.lintOnly {
		log.Info("Lint passed.", "issues", len(result.Issues))
		return
	}

	g, err := synthesize(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "Build error: %v\n", err)
		return
	}
	data, err := render(cfg, g, opts.build)
	if err != nil {
		fmt.Fprintf(errOut, "Build error: %v\n", err)
		return
	}
	if err := writeOutput(cmd, opts.build.output, data); err != nil {
		fmt.Fprintf(errOut, "Write error: %v\n", err)
	}
}

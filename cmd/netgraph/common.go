package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/ctxlog"
)

// builtinConfigName labels the built-in stack in command output.
const builtinConfigName = "(built-in)"

// loadConfig returns the config at path, or the built-in stack when path is empty.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		ctxlog.FromContext(ctx).Debug("Using built-in stack.")
		return config.Default(), nil
	}
	return config.Load(ctx, path)
}

func configName(path string) string {
	if path == "" {
		return builtinConfigName
	}
	return path
}

// synthesize runs a synthesis pass with the command logger.
func synthesize(ctx context.Context, cfg *config.Config) (*builder.Graph, error) {
	return builder.Build(cfg, builder.WithLogger(ctxlog.FromContext(ctx)))
}

// loadAndSynthesize loads the config at path and synthesizes it.
func loadAndSynthesize(ctx context.Context, path string) (*builder.Graph, error) {
	cfg, err := loadConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	return synthesize(ctx, cfg)
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	ctxlog.FromContext(cmd.Context()).Info("Output written.", "path", path, "bytes", len(data))
	return nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return data, nil
}

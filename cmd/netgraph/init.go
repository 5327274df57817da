package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/ctxlog"
)

const defaultInitPath = "netgraph.yaml"

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in stack as a starting config",
		Long: `Init writes the built-in stack to a YAML config file that can be edited and
passed back with --config.

Examples:
    netgraph init
    netgraph init infra/stack.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultInitPath
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	data, err := config.Marshal(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	ctxlog.FromContext(cmd.Context()).Info("Config written.", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

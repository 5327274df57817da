package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/differ"
	"github.com/lex00/netgraph-go/internal/template"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
		configs      bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two templates or two configs semantically",
		Long: `Diff compares two CloudFormation templates and reports the resources and
outputs that were added, removed or modified.

With --configs both arguments are stack configs; each is synthesized first.

Exits with status 2 when the inputs differ.

Examples:
    netgraph diff old.json new.yaml
    netgraph diff --configs stack.yaml stack-next.hcl
    netgraph diff old.json new.json --ignore-order --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := differ.Options{IgnoreOrder: ignoreOrder}

			var (
				result *differ.Result
				err    error
			)
			if configs {
				result, err = diffConfigs(cmd.Context(), args[0], args[1], opts)
			} else {
				result, err = differ.CompareFiles(args[0], args[1], opts)
			}
			if err != nil {
				return err
			}

			if err := outputDiffResult(cmd, result, outputFormat); err != nil {
				return err
			}
			if !result.Identical() {
				return errIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")
	cmd.Flags().BoolVar(&configs, "configs", false, "Treat arguments as stack configs and synthesize them first")

	return cmd
}

func diffConfigs(ctx context.Context, oldPath, newPath string, opts differ.Options) (*differ.Result, error) {
	t1, err := synthesizeTemplate(ctx, oldPath)
	if err != nil {
		return nil, err
	}
	t2, err := synthesizeTemplate(ctx, newPath)
	if err != nil {
		return nil, err
	}
	return differ.Compare(t1, t2, opts)
}

func synthesizeTemplate(ctx context.Context, path string) (*netgraph.Template, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	g, err := synthesize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return template.NewBuilder(g).Build()
}

func outputDiffResult(cmd *cobra.Command, result *differ.Result, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(cmd, netgraph.DiffResult{
			Success: true,
			Diff:    result.Diff,
			Summary: result.Summary,
		})

	case "text":
		if result.Identical() {
			fmt.Fprintln(out, "Templates are identical.")
			return nil
		}

		for _, e := range result.Diff.Added {
			fmt.Fprintf(out, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(out, "- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(out, "~ %s (%s)\n", e.Resource, e.Type)
			for _, c := range e.Changes {
				fmt.Fprintf(out, "    %s\n", c)
			}
		}
		fmt.Fprintf(out, "\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

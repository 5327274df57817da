package main

import (
	"fmt"

	"github.com/spf13/cobra"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/lint"
)

func newLintCmd(root *rootOptions) *cobra.Command {
	var (
		outputFormat string
		enabled      []string
		disabled     []string
		adminPorts   []int
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the config for common networking mistakes",
		Long: `Lint checks the config against the NG rules:

    NG001  ingress open to the world on an administrative port
    NG002  subnet without public IPs routed through the internet gateway
    NG003  subnet address block outside the network address block
    NG004  overlapping subnet address blocks
    NG005  route table never associated with a subnet
    NG006  route target passed through unresolved
    NG007  ingress rule with an inverted port range

Exits with status 2 when an error-severity issue is found.

Examples:
    netgraph lint -c stack.yaml
    netgraph lint -c stack.yaml --disable NG005,NG006 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}

			result := lint.Lint(cfg, lint.Options{
				File:          configName(root.configPath),
				EnabledRules:  enabled,
				DisabledRules: disabled,
				AdminPorts:    adminPorts,
			})

			if err := outputLintResult(cmd, lint.ToResult(result), outputFormat); err != nil {
				return err
			}
			if !result.Success {
				return errIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&enabled, "rules", nil, "Only run these rules")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Skip these rules")
	cmd.Flags().IntSliceVar(&adminPorts, "admin-ports", nil, "Ports NG001 treats as administrative (default 22,3389)")

	return cmd
}

func outputLintResult(cmd *cobra.Command, result netgraph.LintResult, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(cmd, result)

	case "text":
		if len(result.Issues) == 0 {
			fmt.Fprintln(out, "No issues found.")
			return nil
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "%s: %s: %s [%s]\n", issue.File, issue.Severity, issue.Message, issue.Rule)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

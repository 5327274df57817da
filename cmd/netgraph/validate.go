package main

import (
	"fmt"

	"github.com/spf13/cobra"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking a config end to end.
func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		outputFormat string
		cfnLint      bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config, its references and the emitted template",
		Long: `Validate runs the config through every stage short of emitting output.

Checks performed:
  - Fields: every section carries well-formed required fields
  - References: every logical name resolves, in phase order
  - Template: the graph renders as CloudFormation
  - cfn-lint (--cfn-lint): the template passes cfn-lint-go

Examples:
    netgraph validate -c stack.yaml
    netgraph validate -c stack.yaml --cfn-lint --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root.configPath, outputFormat, cfnLint)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&cfnLint, "cfn-lint", false, "Run cfn-lint-go over the emitted template")

	return cmd
}

func runValidate(cmd *cobra.Command, configPath, format string, cfnLint bool) error {
	ctx := cmd.Context()

	var result netgraph.ValidateResult
	cfg, err := loadRaw(configPath)
	if err != nil {
		result.Errors = []string{err.Error()}
	} else {
		result, err = validation.Validate(ctx, cfg, validation.Options{CfnLint: cfnLint})
		if err != nil {
			return err
		}
	}

	if err := outputValidateResult(cmd, result, format); err != nil {
		return err
	}
	if !result.Success {
		return errIssuesFound
	}
	return nil
}

// loadRaw decodes the config without validating it so every problem is reported.
func loadRaw(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return config.Parse(data, format, path)
}

func outputValidateResult(cmd *cobra.Command, result netgraph.ValidateResult, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(cmd, result)

	case "text":
		if result.Success {
			fmt.Fprintf(out, "Validation passed: %d resources OK\n", result.Resources)
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		}

		fmt.Fprintln(out, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", errMsg)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

// Package validation runs the full check pipeline over a stack configuration.
//
// The pipeline is:
//   - config validation: every section is well formed
//   - synthesis: the builder resolves every reference in phase order
//   - emission: the graph renders as a CloudFormation template
//   - cfn-lint-go (optional): the template is checked against the resource schemas
package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/ctxlog"
	"github.com/lex00/netgraph-go/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Options configures Validate.
type Options struct {
	// CfnLint runs cfn-lint-go over the emitted template.
	CfnLint bool
	// Builder options passed to synthesis.
	BuilderOptions []builder.Option
}

// Validate checks cfg end to end. Problems are reported in the result rather than
// returned; the error is reserved for failures of the pipeline itself, such as an
// unwritable temp directory.
func Validate(ctx context.Context, cfg *config.Config, opts Options) (netgraph.ValidateResult, error) {
	log := ctxlog.FromContext(ctx)
	result := netgraph.ValidateResult{}

	if err := cfg.Validate(); err != nil {
		result.Errors = flatten(err)
		return result, nil
	}

	g, err := builder.Build(cfg, append([]builder.Option{builder.WithLogger(log)}, opts.BuilderOptions...)...)
	if err != nil {
		result.Errors = flatten(err)
		return result, nil
	}
	result.Resources = g.Len()

	tmpl, err := template.NewBuilder(g).Build()
	if err != nil {
		result.Errors = flatten(err)
		return result, nil
	}

	if opts.CfnLint {
		cfn, err := LintTemplate(ctx, tmpl)
		if err != nil {
			return result, err
		}
		result.Errors = append(result.Errors, cfn.Errors...)
		result.Warnings = append(result.Warnings, cfn.Warnings...)
		result.Warnings = append(result.Warnings, cfn.Informational...)
	}

	result.Success = len(result.Errors) == 0
	log.Debug("validation finished", "resources", result.Resources, "errors", len(result.Errors), "warnings", len(result.Warnings))
	return result, nil
}

// LintTemplate writes tmpl to a temporary file and runs cfn-lint-go over it.
func LintTemplate(ctx context.Context, tmpl *netgraph.Template) (*CfnLintResult, error) {
	data, err := template.ToJSON(tmpl)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	dir, err := os.MkdirTemp("", "netgraph-validate-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("running cfn-lint", "path", path)
	return RunCfnLint(path)
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// flatten splits a joined error into one message per cause.
func flatten(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

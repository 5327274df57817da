package main

import (
	"fmt"

	"github.com/spf13/cobra"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/ack"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/plan"
	"github.com/lex00/netgraph-go/internal/template"
)

type buildOptions struct {
	format        string
	output        string
	description   string
	namespace     string
	exportOutputs bool
}

func newBuildCmd(root *rootOptions) *cobra.Command {
	opts := buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Synthesize the stack and emit it",
		Long: `Build resolves the configured stack and emits it in one of four forms:

    json   CloudFormation template (default)
    yaml   CloudFormation template
    ack    ACK custom resources as a multi-document YAML stream
    plan   ordered EC2/ECS API requests with ${LogicalID} placeholders

Examples:
    netgraph build
    netgraph build -c stack.yaml -f yaml -o template.yaml
    netgraph build -c stack.hcl -f ack --namespace networking`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, root.configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, yaml, ack or plan")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Template description (json/yaml)")
	cmd.Flags().BoolVar(&opts.exportOutputs, "export-outputs", false, "Export every output as <stack>-<name> (json/yaml)")
	cmd.Flags().StringVar(&opts.namespace, "namespace", ack.DefaultNamespace, "Namespace of ACK objects (ack)")

	return cmd
}

func runBuild(cmd *cobra.Command, configPath string, opts buildOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return buildFailed(cmd, opts.format, err)
	}
	g, err := synthesize(ctx, cfg)
	if err != nil {
		return buildFailed(cmd, opts.format, err)
	}

	data, err := render(cfg, g, opts)
	if err != nil {
		return buildFailed(cmd, opts.format, err)
	}
	return writeOutput(cmd, opts.output, data)
}

// render emits g in the requested format.
func render(cfg *config.Config, g *builder.Graph, opts buildOptions) ([]byte, error) {
	switch opts.format {
	case "json", "yaml":
		b := template.NewBuilder(g)
		b.Description = opts.description
		b.ExportOutputs = opts.exportOutputs
		tmpl, err := b.Build()
		if err != nil {
			return nil, err
		}
		if opts.format == "yaml" {
			return template.ToYAML(tmpl)
		}
		data, err := template.ToJSON(tmpl)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	case "ack":
		e := ack.NewEmitter(g)
		e.Namespace = opts.namespace
		return e.Render()

	case "plan":
		p, err := plan.Build(g)
		if err != nil {
			return nil, err
		}
		p.Region = cfg.Environment.Region
		data, err := p.ToJSON()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	default:
		return nil, fmt.Errorf("unknown format: %s (use json, yaml, ack or plan)", opts.format)
	}
}

// buildFailed reports err. JSON output gets a machine-readable result on stdout.
func buildFailed(cmd *cobra.Command, format string, err error) error {
	if format == "json" {
		if perr := printJSON(cmd, netgraph.BuildResult{Success: false, Errors: []string{err.Error()}}); perr != nil {
			return perr
		}
	}
	return fmt.Errorf("build failed: %w", err)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/netgraph-go/internal/graph"
)

func newGraphCmd(root *rootOptions) *cobra.Command {
	var (
		outputFormat      string
		includeUnresolved bool
		clusterByKind     bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a DOT or Mermaid graph of resource references",
		Long: `Generate a DOT or Mermaid format graph showing how resources reference each other.

The output can be rendered with Graphviz:
    netgraph graph | dot -Tpng -o network.png

Or used in GitHub markdown (Mermaid format):
    netgraph graph -f mermaid

Examples:
    netgraph graph -c stack.yaml
    netgraph graph --cluster            # group resources by kind
    netgraph graph --unresolved         # show NAT and peering targets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			g, err := loadAndSynthesize(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:            graphFormat,
				IncludeUnresolved: includeUnresolved,
				ClusterByKind:     clusterByKind,
			}
			return gen.Generate(g, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&includeUnresolved, "unresolved", false, "Include pass-through route targets")
	cmd.Flags().BoolVar(&clusterByKind, "cluster", false, "Cluster resources by kind")

	return cmd
}

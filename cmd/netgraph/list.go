package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/serialize"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var (
		outputFormat string
		kind         string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the synthesized resources in emission order",
		Long: `List synthesizes the stack and prints every resource with its logical ID,
kind, phase and the IDs it references.

Examples:
    netgraph list
    netgraph list -c stack.yaml --kind Subnet
    netgraph list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadAndSynthesize(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			return outputListResult(cmd, listResources(g, netgraph.Kind(kind)), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&kind, "kind", "", "Only list resources of this kind")

	return cmd
}

func listResources(g *builder.Graph, kind netgraph.Kind) netgraph.ListResult {
	result := netgraph.ListResult{Resources: []netgraph.ListResource{}}
	for _, res := range g.Resources() {
		if kind != "" && res.Kind != kind {
			continue
		}
		result.Resources = append(result.Resources, netgraph.ListResource{
			Name:       res.Name,
			LogicalID:  res.ID,
			Kind:       res.Kind,
			Phase:      serialize.ToSnakeCase(res.Phase.String()),
			References: res.Refs,
		})
	}
	return result
}

func outputListResult(cmd *cobra.Command, result netgraph.ListResult, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(cmd, result)

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(out, "No resources found.")
			return nil
		}

		fmt.Fprintf(out, "Resources (%d):\n\n", len(result.Resources))
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  LOGICAL ID\tKIND\tPHASE\tNAME\tREFERENCES")
		for _, res := range result.Resources {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", res.LogicalID, res.Kind, res.Phase, res.Name, strings.Join(res.References, ","))
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

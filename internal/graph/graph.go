// Package graph renders a resolved resource graph as DOT or Mermaid.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from a resource graph.
type Generator struct {
	// IncludeUnresolved adds dashed nodes for pass-through route targets.
	IncludeUnresolved bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByKind groups resources of the same kind.
	ClusterByKind bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(rg *builder.Graph, w io.Writer) error {
	graph := g.buildGraph(rg)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(rg *builder.Graph) (string, error) {
	var sb strings.Builder
	if err := g.Generate(rg, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(rg *builder.Graph) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	if g.ClusterByKind {
		g.addClusteredNodes(graph, rg)
	} else {
		for _, res := range rg.Resources() {
			addNode(graph, res)
		}
	}

	// Edges point from a resource to what it references.
	for _, res := range rg.Resources() {
		from := graph.Node(res.ID)
		for _, ref := range res.Refs {
			e := graph.Edge(from, graph.Node(ref))
			if target, ok := rg.Lookup(ref); ok && target.Kind == netgraph.KindGateway {
				e.Attr("color", "blue")
			}
		}

		if !g.IncludeUnresolved {
			continue
		}
		if p, ok := res.Props.(builder.RouteProps); ok && !p.Resolved() && p.TargetRef != "" {
			n := graph.Node(p.TargetRef)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(p.TargetRef + "\\n[" + string(p.TargetKind) + "]")
			graph.Edge(from, n).Attr("style", "dashed")
		}
	}

	return graph
}

// addClusteredNodes groups nodes by kind; kinds with a single resource stay top-level.
func (g *Generator) addClusteredNodes(graph *dot.Graph, rg *builder.Graph) {
	var kinds []netgraph.Kind
	byKind := make(map[netgraph.Kind][]*builder.Resource)
	for _, res := range rg.Resources() {
		if _, seen := byKind[res.Kind]; !seen {
			kinds = append(kinds, res.Kind)
		}
		byKind[res.Kind] = append(byKind[res.Kind], res)
	}

	for _, kind := range kinds {
		resources := byKind[kind]
		if len(resources) == 1 {
			addNode(graph, resources[0])
			continue
		}
		cluster := graph.Subgraph("cluster_"+string(kind), dot.ClusterOption{})
		cluster.Attr("label", string(kind))
		cluster.Attr("style", "rounded")
		cluster.Attr("bgcolor", "lightyellow")
		for _, res := range resources {
			addNode(cluster, res)
		}
	}
}

func addNode(graph *dot.Graph, res *builder.Resource) {
	n := graph.Node(res.ID)
	n.Label(res.Name + "\\n[" + string(res.Kind) + "]")
}

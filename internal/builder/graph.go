package builder

import (
	"sort"

	netgraph "github.com/lex00/netgraph-go"
)

// Graph is a fully resolved resource graph in emission order.
type Graph struct {
	resources []*Resource
	byID      map[string]*Resource
	tags      map[string]string
}

// Resources returns the resources in emission order. Every resource appears after
// all resources it references.
func (g *Graph) Resources() []*Resource {
	return g.resources
}

// Len returns the number of resources.
func (g *Graph) Len() int {
	return len(g.resources)
}

// Lookup returns the resource with the given logical ID.
func (g *Graph) Lookup(id string) (*Resource, bool) {
	r, ok := g.byID[id]
	return r, ok
}

// OfKind returns the resources of one kind in emission order.
func (g *Graph) OfKind(kind netgraph.Kind) []*Resource {
	var out []*Resource
	for _, r := range g.resources {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of resources of one kind.
func (g *Graph) Count(kind netgraph.Kind) int {
	return len(g.OfKind(kind))
}

// Tags returns the extra tags applied to every taggable resource.
func (g *Graph) Tags() map[string]string {
	return g.tags
}

// Graph sorts the accumulated resources topologically and returns the graph.
// It returns the pass error if any operation failed.
func (s *Synthesis) Graph() (*Graph, error) {
	if s.err != nil {
		return nil, s.err
	}
	order, err := topologicalSort(s.resources)
	if err != nil {
		return nil, s.fail(err)
	}

	g := &Graph{
		resources: order,
		byID:      make(map[string]*Resource, len(order)),
		tags:      s.tags,
	}
	for _, r := range order {
		g.byID[r.ID] = r
	}
	s.logger.Debug("Graph emitted.", "resources", len(order))
	return g, nil
}

// topologicalSort orders resources so that each follows its references (Kahn's
// algorithm). Ties break by phase, then creation order.
func topologicalSort(resources []*Resource) ([]*Resource, error) {
	byID := make(map[string]*Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}

	dependents := make(map[string][]*Resource)
	inDegree := make(map[string]int, len(resources))
	for _, r := range resources {
		inDegree[r.ID] = len(r.Refs)
		for _, ref := range r.Refs {
			if _, ok := byID[ref]; !ok {
				return nil, &netgraph.UnresolvedReferenceError{Kind: r.Kind, Name: r.Name, Target: "resource", Ref: ref}
			}
			dependents[ref] = append(dependents[ref], r)
		}
	}

	var queue []*Resource
	for _, r := range resources {
		if inDegree[r.ID] == 0 {
			queue = append(queue, r)
		}
	}
	sortQueue(queue)

	result := make([]*Resource, 0, len(resources))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dep := range dependents[node.ID] {
			inDegree[dep.ID]--
			if inDegree[dep.ID] == 0 {
				queue = append(queue, dep)
				sortQueue(queue)
			}
		}
	}

	if len(result) != len(resources) {
		return nil, detectCycle(resources, byID)
	}
	return result, nil
}

func sortQueue(queue []*Resource) {
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Phase != queue[j].Phase {
			return queue[i].Phase < queue[j].Phase
		}
		return queue[i].seq < queue[j].seq
	})
}

// detectCycle finds one reference cycle and reports its logical IDs in order.
func detectCycle(resources []*Resource, byID map[string]*Resource) error {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var stack []string
	var cycle []string

	var visit func(r *Resource) bool
	visit = func(r *Resource) bool {
		visited[r.ID] = true
		onPath[r.ID] = true
		stack = append(stack, r.ID)

		for _, ref := range r.Refs {
			next := byID[ref]
			if !visited[ref] {
				if visit(next) {
					return true
				}
			} else if onPath[ref] {
				for i, id := range stack {
					if id == ref {
						cycle = append(append([]string{}, stack[i:]...), ref)
						return true
					}
				}
			}
		}

		onPath[r.ID] = false
		stack = stack[:len(stack)-1]
		return false
	}

	for _, r := range resources {
		if !visited[r.ID] && visit(r) {
			break
		}
	}
	return &netgraph.CyclicReferenceError{Cycle: cycle}
}

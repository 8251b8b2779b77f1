package inject

import (
	"fmt"
	"slices"
	"strings"

	bgraph "github.com/dominikbraun/graph"
)

// edge is a directed dependency: the owning node may not advance past a
// transition guarded by this edge until the target node has reached
// minState. Field edges guard every transition; hook edges guard the
// transition into their hook's target state and every later one.
type edge struct {
	to        *node
	minState  State
	fromField bool
	hookState State
}

// graph holds the dependency edges between the container's nodes.
type graph struct {
	nodes []*node
}

// newGraph resolves every injection point and hook parameter to its
// target node. A dependency with a declared state that has no assignable
// node is an error; an undeclared one simply contributes no edge.
func newGraph(c *Container) (*graph, error) {
	for _, n := range c.nodes {
		for _, point := range n.ct.injects {
			dep := c.nodeFor(point.typ)
			if dep == nil {
				if point.required {
					return nil, fmt.Errorf("%w of %s (field %s of %s)",
						ErrMissingImplementation, point.typ, point.name, n.ct.name)
				}
				continue
			}
			n.edges = append(n.edges, edge{to: dep, minState: point.minState, fromField: true})
		}

		for _, h := range n.hooks {
			params, _, err := h.signature()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", n.ct.name, err)
			}
			for i, paramType := range params {
				minState, declared := h.paramStates[i]
				dep := c.nodeFor(paramType)
				if dep == nil {
					if declared {
						return nil, fmt.Errorf("%w of %s (parameter %d of %s)",
							ErrMissingImplementation, paramType, i, h.name())
					}
					continue
				}
				if !declared {
					minState = Created
				}
				n.edges = append(n.edges, edge{to: dep, minState: minState, hookState: h.state})
			}
		}
	}
	return &graph{nodes: c.nodes}, nil
}

// ready reports whether n may advance to next: every dependency reached
// through an injection field, or through a hook targeting a state at or
// below next, must have reached the edge's minimum state.
func (g *graph) ready(n *node, next State) bool {
	for _, e := range n.edges {
		if !e.fromField && e.hookState > next {
			continue
		}
		if e.to.state < e.minState {
			return false
		}
	}
	return true
}

// readyToStop considers only edges attached to Stopped hooks.
func (g *graph) readyToStop(n *node) bool {
	for _, e := range n.edges {
		if e.fromField || e.hookState != Stopped {
			continue
		}
		if e.to.state < e.minState {
			return false
		}
	}
	return true
}

// attributeCycles looks for dependency cycles among the stalled nodes
// whose unmet edges cross a non-Created state boundary. Such a cycle can
// never make progress, so it is the stall's cause.
func attributeCycles(stalled []*node) []string {
	g := bgraph.New(bgraph.StringHash, bgraph.Directed())

	members := map[string]bool{}
	for _, n := range stalled {
		_ = g.AddVertex(n.ct.name)
		members[n.ct.name] = true
	}

	selfLoops := map[string]bool{}
	for _, n := range stalled {
		for _, e := range n.edges {
			if e.minState == Created || e.to.state >= e.minState || !members[e.to.ct.name] {
				continue
			}
			if e.to == n {
				selfLoops[n.ct.name] = true
			}
			_ = g.AddEdge(n.ct.name, e.to.ct.name)
		}
	}

	sccs, err := bgraph.StronglyConnectedComponents(g)
	if err != nil {
		return nil
	}

	var cycles []string
	for _, scc := range sccs {
		if len(scc) < 2 && !selfLoops[scc[0]] {
			continue
		}
		slices.Sort(scc)
		cycles = append(cycles, strings.Join(scc, " -> "))
	}
	slices.Sort(cycles)
	return cycles
}

// Package dag orders crates so that dependencies come first.
package dag

import (
	"fmt"
	"slices"
)

// Graph has an edge from every dependency to its dependent, so a
// topological order lists dependencies first.
type Graph struct {
	Edges   [][]NodeID // Edges[dep] = dependents
	Indeg   []int      // число зависимостей, учитываются только присутствующие узлы
	Present []bool     // узел объявлен, а не только упомянут в deps
}

// BuildGraph reports self dependencies, unknown dependencies and duplicate
// declarations as problems; the offending edges are dropped.
func BuildGraph(idx Index, nodes []Node) (Graph, []error) {
	count := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	var problems []error
	deps := make([][]string, count)
	for _, n := range nodes {
		id, ok := idx.NameToID[n.Name]
		if !ok {
			continue
		}
		if g.Present[id] {
			problems = append(problems, fmt.Errorf("crate %q declared twice", n.Name))
			continue
		}
		g.Present[id] = true
		deps[id] = n.Deps
	}

	for to := range count {
		if !g.Present[to] {
			continue
		}
		seen := make(map[NodeID]struct{}, len(deps[to]))
		for _, d := range deps[to] {
			from, ok := idx.NameToID[d]
			if !ok {
				continue
			}
			if int(from) == to {
				problems = append(problems, fmt.Errorf("crate %q depends on itself", d))
				continue
			}
			if !g.Present[from] {
				problems = append(problems, fmt.Errorf("crate %q depends on undeclared crate %q", idx.IDToName[to], d))
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			g.Edges[from] = append(g.Edges[from], NodeID(to))
			g.Indeg[to]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g, problems
}

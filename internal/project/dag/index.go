package dag

import "sort"

type NodeID uint32

// Node is one crate and the names it depends on.
type Node struct {
	Name string
	Deps []string
}

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные имена (в том числе из deps), отсортировать, раздать ID
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Name != "" {
			uniq[n.Name] = struct{}{}
		}
		for _, d := range n.Deps {
			if d != "" {
				uniq[d] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]NodeID, len(names))
	for i, name := range names {
		nameToID[name] = NodeID(i)
	}
	return Index{NameToID: nameToID, IDToName: names}
}

func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[id]
	}
	return out
}

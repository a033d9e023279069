package dag

import (
	"reflect"
	"testing"
)

func order(t *testing.T, nodes []Node) (Index, *Topo, []error) {
	t.Helper()
	idx := BuildIndex(nodes)
	g, problems := BuildGraph(idx, nodes)
	return idx, ToposortKahn(g), problems
}

func TestBuildIndexIncludesDeps(t *testing.T) {
	idx := BuildIndex([]Node{{Name: "app", Deps: []string{"core", "util"}}, {Name: "util"}})
	want := []string{"app", "core", "util"}
	if !reflect.DeepEqual(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestDependenciesComeFirst(t *testing.T) {
	idx, topo, problems := order(t, []Node{
		{Name: "app", Deps: []string{"util", "core"}},
		{Name: "util", Deps: []string{"core"}},
		{Name: "core"},
		{Name: "tools"},
	})
	if len(problems) != 0 {
		t.Fatalf("problems: %v", problems)
	}
	if topo.Cyclic {
		t.Fatal("unexpected cycle")
	}
	got := idx.Names(topo.Order)
	want := []string{"core", "tools", "util", "app"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(topo.Batches))
	}
}

func TestCycleDetected(t *testing.T) {
	idx, topo, _ := order(t, []Node{
		{Name: "a", Deps: []string{"b"}},
		{Name: "b", Deps: []string{"a"}},
		{Name: "c"},
	})
	if !topo.Cyclic {
		t.Fatal("cycle not detected")
	}
	if got := idx.Names(topo.Cycles); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("cycles = %v", got)
	}
	if got := idx.Names(topo.Order); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("order = %v", got)
	}
}

func TestProblemsReported(t *testing.T) {
	_, topo, problems := order(t, []Node{
		{Name: "a", Deps: []string{"a", "ghost"}},
		{Name: "a"},
	})
	if len(problems) != 3 {
		t.Fatalf("problems = %v, want 3", problems)
	}
	if topo.Cyclic || len(topo.Order) != 1 {
		t.Fatalf("topo = %+v", topo)
	}
}

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"srcdef/internal/project/dag"
)

// CrateManifest describes one [[crate]] entry.
type CrateManifest struct {
	Name      string   `toml:"name" yaml:"name"`
	Root      string   `toml:"root" yaml:"root"`
	Cfg       []string `toml:"cfg" yaml:"cfg"`
	Deps      []string `toml:"deps" yaml:"deps"`
	ProcMacro bool     `toml:"proc_macro" yaml:"proc_macro"`
}

// Manifest is a parsed workspace manifest. Crate roots are absolute after
// Load.
type Manifest struct {
	Path   string          `toml:"-" yaml:"-"`
	Dir    string          `toml:"-" yaml:"-"`
	Crates []CrateManifest `toml:"crate" yaml:"crates"`
}

var (
	ErrNoCrates         = errors.New("manifest declares no crates")
	ErrCrateRootMissing = errors.New("crate root missing")
	ErrDuplicateCrate   = errors.New("duplicate crate")
	ErrUnknownDep       = errors.New("unknown dependency")
	ErrDepCycle         = errors.New("dependency cycle")
)

// Load parses a TOML or YAML manifest, chosen by extension, and validates it.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported manifest format %q", path, ext)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	m.Path = abs
	m.Dir = filepath.Dir(abs)
	if err := m.resolve(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Discover finds and loads the manifest governing startDir.
func Discover(startDir string) (*Manifest, error) {
	path, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func (m *Manifest) resolve() error {
	if len(m.Crates) == 0 {
		return ErrNoCrates
	}
	seen := make(map[string]struct{}, len(m.Crates))
	for i := range m.Crates {
		c := &m.Crates[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return fmt.Errorf("crate #%d: missing name", i+1)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w %q", ErrDuplicateCrate, c.Name)
		}
		seen[c.Name] = struct{}{}
		root := strings.TrimSpace(c.Root)
		if root == "" {
			return fmt.Errorf("crate %q: %w", c.Name, ErrCrateRootMissing)
		}
		if !filepath.IsAbs(root) {
			root = filepath.Join(m.Dir, filepath.FromSlash(root))
		}
		info, err := os.Stat(root)
		if err != nil || info.IsDir() {
			return fmt.Errorf("crate %q: %w: %s", c.Name, ErrCrateRootMissing, root)
		}
		c.Root = filepath.Clean(root)
	}
	for _, c := range m.Crates {
		for _, d := range c.Deps {
			if _, ok := seen[d]; !ok {
				return fmt.Errorf("crate %q: %w %q", c.Name, ErrUnknownDep, d)
			}
		}
	}
	return nil
}

// Ordered returns crates with every dependency before its dependents.
// Crates that are independent keep a stable, name-sorted order.
func (m *Manifest) Ordered() ([]CrateManifest, error) {
	nodes := make([]dag.Node, len(m.Crates))
	byName := make(map[string]CrateManifest, len(m.Crates))
	for i, c := range m.Crates {
		nodes[i] = dag.Node{Name: c.Name, Deps: c.Deps}
		byName[c.Name] = c
	}
	idx := dag.BuildIndex(nodes)
	g, problems := dag.BuildGraph(idx, nodes)
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	topo := dag.ToposortKahn(g)
	if topo.Cyclic {
		return nil, fmt.Errorf("%w: %s", ErrDepCycle, strings.Join(idx.Names(topo.Cycles), ", "))
	}
	out := make([]CrateManifest, 0, len(topo.Order))
	for _, id := range topo.Order {
		out = append(out, byName[idx.IDToName[id]])
	}
	return out, nil
}

// Dirs returns the directories of all crate roots, deduplicated.
func (m *Manifest) Dirs() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, c := range m.Crates {
		dir := filepath.Dir(c.Root)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}
	return out
}

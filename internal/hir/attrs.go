package hir

import (
	"strconv"
	"strings"

	"srcdef/internal/cfg"
	"srcdef/internal/syntax"
)

// Attrs is the subset of attributes the def collector looks at.
type Attrs struct {
	Cfg         []string // raw predicates of every #[cfg(...)]
	Path        string   // #[path = "..."]
	ProcMacro   bool
	MacroExport bool
}

func lowerAttrs(n syntax.Node) Attrs {
	var a Attrs
	for _, attr := range n.ChildrenOfKind(syntax.Attr) {
		switch attr.Name() {
		case "cfg":
			a.Cfg = append(a.Cfg, attr.Value())
		case "path":
			a.Path = unquote(attr.Value())
		case "proc_macro", "proc_macro_attribute", "proc_macro_derive":
			a.ProcMacro = true
		case "macro_export":
			a.MacroExport = true
		}
	}
	return a
}

// Enabled reports whether every cfg predicate holds under opts.
func (a Attrs) Enabled(opts cfg.Options) bool {
	for _, pred := range a.Cfg {
		if !opts.Enabled(pred) {
			return false
		}
	}
	return true
}

// cfgEnabled checks the attributes attached directly to a field, variant or
// parameter node.
func cfgEnabled(n syntax.Node, opts cfg.Options) bool {
	for _, attr := range n.ChildrenOfKind(syntax.Attr) {
		if attr.Name() == "cfg" && !opts.Enabled(attr.Value()) {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

// Package cfg evaluates #[cfg(...)] predicates against a crate's options.
package cfg

import (
	"fmt"
	"slices"
	"strings"
)

// Op is the node type of a predicate.
type Op uint8

const (
	OpAtom Op = iota // name or key = "value"
	OpNot
	OpAll
	OpAny
)

// Expr is a parsed cfg predicate.
type Expr struct {
	Op    Op
	Key   string
	Value string // empty for bare names
	Args  []Expr
}

func (e Expr) String() string {
	switch e.Op {
	case OpAtom:
		if e.Value != "" {
			return fmt.Sprintf("%s = %q", e.Key, e.Value)
		}
		return e.Key
	case OpNot:
		return "not(" + joinExprs(e.Args) + ")"
	case OpAll:
		return "all(" + joinExprs(e.Args) + ")"
	default:
		return "any(" + joinExprs(e.Args) + ")"
	}
}

func joinExprs(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Options is the set of enabled cfg atoms of one crate.
type Options struct {
	set map[string]struct{}
}

// NewOptions accepts entries like "test" or `feature="serde"`.
func NewOptions(entries ...string) Options {
	o := Options{set: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			o.set[strings.TrimSpace(e)] = struct{}{}
			continue
		}
		o.set[atomKey(strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"`))] = struct{}{}
	}
	return o
}

func atomKey(key, value string) string {
	if value == "" {
		return key
	}
	return key + "=" + value
}

// Entries lists the enabled atoms in sorted order.
func (o Options) Entries() []string {
	out := make([]string, 0, len(o.set))
	for k := range o.set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (o Options) Eval(e Expr) bool {
	switch e.Op {
	case OpAtom:
		_, ok := o.set[atomKey(e.Key, e.Value)]
		return ok
	case OpNot:
		return len(e.Args) == 1 && !o.Eval(e.Args[0])
	case OpAll:
		for _, a := range e.Args {
			if !o.Eval(a) {
				return false
			}
		}
		return true
	case OpAny:
		for _, a := range e.Args {
			if o.Eval(a) {
				return true
			}
		}
		return false
	}
	return true
}

// Enabled parses and evaluates a predicate. A predicate that does not
// parse counts as enabled, so malformed cfgs never hide code.
func (o Options) Enabled(predicate string) bool {
	e, err := Parse(predicate)
	if err != nil {
		return true
	}
	return o.Eval(e)
}

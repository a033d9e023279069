package expand

import (
	"errors"
	"fmt"
	"strings"

	"srcdef/internal/syntax"
)

// ExpansionInfo ties a macro file back to the call that produced it.
type ExpansionInfo struct {
	Call     MacroCallID
	CallSite InFileNode // the MacroCall node
	// Arg is the argument token tree at the call site. Climbing out of the
	// expansion continues from Arg's parent, or from CallSite when the call
	// has no token tree.
	Arg      InFileNode
	Expanded InFileNode // root of the expansion
}

// Request carries what an expander needs for one call.
type Request struct {
	Name string
	// Def is the macro definition node, invalid for built-in or unresolved macros.
	Def syntax.Node
	// Arg is the argument token tree, possibly invalid.
	Arg syntax.Node
}

// Expander produces the syntax tree of one macro expansion.
type Expander interface {
	Expand(req Request) (*syntax.Tree, error)
}

// ErrNoExpansion is returned when an expander does not know a macro.
var ErrNoExpansion = errors.New("no expansion")

// Table expands macros by name to prebuilt trees. Useful for tests and for
// macros whose output is known ahead of time.
type Table map[string]func(arg string) *syntax.Tree

func (t Table) Expand(req Request) (*syntax.Tree, error) {
	f, ok := t[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s!", ErrNoExpansion, req.Name)
	}
	arg := ""
	if req.Arg.IsValid() {
		arg = req.Arg.Value()
	}
	return f(arg), nil
}

// Verbatim expands a macro_rules macro to the body of its first rule, and a
// macro without a definition to its argument. The text is parsed as items.
// No fragment substitution happens.
type Verbatim struct {
	Parse func(text []byte) *syntax.Tree
}

func (v Verbatim) Expand(req Request) (*syntax.Tree, error) {
	if req.Def.IsValid() {
		rules := req.Def.ChildOfKind(syntax.TokenTree)
		if !rules.IsValid() {
			return nil, fmt.Errorf("%w: %s! has no rules", ErrNoExpansion, req.Name)
		}
		body, ok := FirstRuleBody(rules.Value())
		if !ok {
			return nil, fmt.Errorf("%w: %s! has a malformed rule", ErrNoExpansion, req.Name)
		}
		return v.Parse([]byte(body)), nil
	}
	if !req.Arg.IsValid() {
		return nil, fmt.Errorf("%w: %s! has no argument", ErrNoExpansion, req.Name)
	}
	return v.Parse([]byte(req.Arg.Value())), nil
}

// FirstRuleBody extracts the transcriber of the first rule in
// "(matcher) => { body } ; ...".
func FirstRuleBody(rules string) (string, bool) {
	arrow := strings.Index(rules, "=>")
	if arrow < 0 {
		return "", false
	}
	rest := strings.TrimSpace(rules[arrow+2:])
	if rest == "" {
		return "", false
	}
	open := rest[0]
	var closeCh byte
	switch open {
	case '{':
		closeCh = '}'
	case '(':
		closeCh = ')'
	case '[':
		closeCh = ']'
	default:
		return "", false
	}
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return strings.TrimSpace(rest[1:i]), true
			}
		}
	}
	return "", false
}

// Chain tries expanders in order and returns the first result that is not
// ErrNoExpansion.
type Chain []Expander

func (c Chain) Expand(req Request) (*syntax.Tree, error) {
	for _, e := range c {
		tree, err := e.Expand(req)
		if errors.Is(err, ErrNoExpansion) {
			continue
		}
		return tree, err
	}
	return nil, fmt.Errorf("%w: %s!", ErrNoExpansion, req.Name)
}

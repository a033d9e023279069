package main

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"srcdef/internal/dynmap"
	"srcdef/internal/expand"
	"srcdef/internal/semantics"
	"srcdef/internal/syntax"
)

type childLine struct {
	key   string
	ptr   syntax.Ptr
	ident string
}

func collect[ID comparable](out []childLine, m *dynmap.Map, key *dynmap.Key[ID]) []childLine {
	for _, e := range dynmap.Entries(m, key) {
		out = append(out, childLine{key: key.String(), ptr: e.Ptr, ident: fmt.Sprint(e.ID)})
	}
	return out
}

// childLines flattens every key a module or body container can hold.
func childLines(m *dynmap.Map) []childLine {
	var out []childLine
	out = collect(out, m, dynmap.Function)
	out = collect(out, m, dynmap.Struct)
	out = collect(out, m, dynmap.Union)
	out = collect(out, m, dynmap.Enum)
	out = collect(out, m, dynmap.Const)
	out = collect(out, m, dynmap.Static)
	out = collect(out, m, dynmap.Trait)
	out = collect(out, m, dynmap.TraitAlias)
	out = collect(out, m, dynmap.TypeAlias)
	out = collect(out, m, dynmap.Impl)
	out = collect(out, m, dynmap.ExternCrate)
	out = collect(out, m, dynmap.Use)
	out = collect(out, m, dynmap.MacroRules)
	out = collect(out, m, dynmap.Macro2)
	out = collect(out, m, dynmap.ProcMacro)
	out = collect(out, m, dynmap.MacroCall)
	out = collect(out, m, dynmap.Block)
	slices.SortStableFunc(out, func(a, b childLine) int { return cmp.Compare(a.ptr.Index, b.ptr.Index) })
	return out
}

var childrenCmd = &cobra.Command{
	Use:   "children FILE",
	Short: "List the definitions each module of FILE declares in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openWorkspace(cmd, args[0])
		if err != nil {
			return err
		}
		defer sess.printTimings(cmd)
		id, err := sess.fileID(args[0])
		if err != nil {
			return err
		}
		s := semantics.New(cmd.Context(), sess.ws.DB)
		file := expand.FromFile(id)
		tree := sess.ws.DB.ParseOrExpand(file)
		w := cmd.OutOrStdout()
		head := color.New(color.Bold)

		mods := s.FileToDef(id)
		if len(mods) == 0 {
			fmt.Fprintf(w, "%s is not part of any module tree\n", args[0])
			return nil
		}
		for _, mod := range mods {
			fmt.Fprintln(w, head.Sprintf("module %s", mod))
			for _, line := range childLines(s.ChildrenOfIn(semantics.ModuleContainer(mod), file)) {
				n, ok := line.ptr.ToNode(tree)
				if !ok {
					continue
				}
				fmt.Fprintf(w, "  %-12s %-20s %s  %s\n", line.key, n.Name(), line.ident,
					sess.location(expand.NewInFile(file, n)))
			}
		}
		return nil
	},
}

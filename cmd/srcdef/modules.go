package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"srcdef/internal/semantics"
)

var modulesCmd = &cobra.Command{
	Use:   "modules FILE",
	Short: "Show the modules FILE defines and where they are declared",
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
		w := cmd.OutOrStdout()
		mods := s.FileToDef(id)
		if len(mods) == 0 {
			fmt.Fprintf(w, "%s is detached: no crate reaches it\n", args[0])
			return nil
		}
		for _, m := range mods {
			krate := sess.ws.DB.Crate(m.Krate)
			data := sess.ws.DB.DefMapOf(m).Module(m.Local)
			name := data.Name
			if name == "" {
				name = "crate"
			}
			fmt.Fprintf(w, "%s %s in crate %s\n", color.New(color.Bold).Sprint(name), m, krate.Name)
			src, ok := s.ModuleSource(m)
			if !ok {
				continue
			}
			if src.Definition.Value.IsValid() {
				fmt.Fprintf(w, "  definition:  %s\n", sess.location(src.Definition))
			}
			if src.Declaration.Value.IsValid() {
				fmt.Fprintf(w, "  declaration: %s\n", sess.location(src.Declaration))
			}
			fmt.Fprintf(w, "  children:    %d\n", len(data.ChildModules()))
		}
		return nil
	},
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"srcdef/internal/semantics"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE LINE:COL",
	Short: "Resolve the definition declared at a position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lc, err := parseLineCol(args[1])
		if err != nil {
			return err
		}
		sess, err := openWorkspace(cmd, args[0])
		if err != nil {
			return err
		}
		defer sess.printTimings(cmd)
		id, err := sess.fileID(args[0])
		if err != nil {
			return err
		}
		off, ok := sess.ws.Files.Offset(id, lc)
		if !ok {
			return fmt.Errorf("%s: position %s is out of range", args[0], args[1])
		}

		s := semantics.New(cmd.Context(), sess.ws.DB)
		idx := sess.timer.Begin("resolve")
		d, node, ok := s.DefinitionAt(id, off)
		sess.timer.End(idx, "")
		if !ok {
			return fmt.Errorf("%s:%s: no definition here", args[0], args[1])
		}
		container, _ := s.FindContainer(node)
		src, hasSrc := s.SourceOfDefinition(d)

		out := resolveOutput{
			Kind:       d.Kind.String(),
			Name:       node.Value.Name(),
			Definition: d.String(),
			Container:  container.String(),
			At:         sess.location(node),
		}
		if hasSrc {
			out.Source = sess.location(src)
		}
		if resolveFormat == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s\n", color.New(color.FgCyan, color.Bold).Sprint(out.Kind), out.Name)
		fmt.Fprintf(w, "  id:        %s\n", out.Definition)
		fmt.Fprintf(w, "  container: %s\n", out.Container)
		fmt.Fprintf(w, "  at:        %s\n", out.At)
		if out.Source != "" {
			fmt.Fprintf(w, "  source:    %s\n", out.Source)
		}
		return nil
	},
}

type resolveOutput struct {
	Kind       string `json:"kind"`
	Name       string `json:"name,omitempty"`
	Definition string `json:"definition"`
	Container  string `json:"container"`
	At         string `json:"at"`
	Source     string `json:"source,omitempty"`
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "pretty", "output format (pretty|json)")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"srcdef/internal/driver"
)

var (
	indexFormat string
	indexUI     string
	indexOut    string
)

var indexCmd = &cobra.Command{
	Use:   "index [DIR]",
	Short: "Resolve every definition of a workspace and check round trips",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		format, err := driver.ParseFormat(indexFormat)
		if err != nil {
			return err
		}
		mode, err := readUIMode(indexUI)
		if err != nil {
			return err
		}
		sess, err := openWorkspace(cmd, dir)
		if err != nil {
			return err
		}
		opts := driver.IndexOptions{Jobs: jobsFlag(cmd), Timer: sess.timer}

		var rep *driver.Report
		if mode.progressView(format, os.Stderr) {
			rep, err = runIndexWithUI(cmd.Context(), "indexing "+sess.ws.Manifest.Dir, sess.ws, opts)
		} else {
			rep, err = driver.Index(cmd.Context(), sess.ws, opts)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if indexOut != "" {
			f, err := os.Create(indexOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", indexOut, err)
			}
			defer f.Close()
			out = f
		}
		if err := driver.WriteReport(out, rep, format); err != nil {
			return err
		}
		sess.printTimings(cmd)
		if n := rep.Mismatches(); n > 0 {
			return fmt.Errorf("%d definitions do not round-trip", n)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexFormat, "format", "pretty", "report format (pretty|json|msgpack)")
	indexCmd.Flags().StringVar(&indexUI, "ui", "off", "progress UI (auto|on|off)")
	indexCmd.Flags().StringVarP(&indexOut, "output", "o", "", "write the report to a file")
}

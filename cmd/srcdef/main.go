package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"srcdef/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "srcdef",
	Short: "Map syntax nodes to definitions and back",
	Long: `srcdef loads a workspace described by srcdef.toml (or srcdef.yaml),
builds its module trees and resolves syntax nodes to the definitions they
declare, and definitions back to their syntax.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finishTrace(false)
	},
}

var traceCleanup func(failed bool)

func finishTrace(failed bool) {
	if traceCleanup != nil {
		traceCleanup(failed)
		traceCleanup = nil
	}
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(childrenCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity")
	flags.Duration("trace-heartbeat", 0, "heartbeat interval (0 = off)")

	if err := rootCmd.Execute(); err != nil {
		finishTrace(true)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"srcdef/internal/driver"
	"srcdef/internal/expand"
	"srcdef/internal/observ"
	"srcdef/internal/source"
)

type session struct {
	ws    *driver.Workspace
	timer *observ.Timer
}

// openWorkspace loads the workspace governing path, a file or directory.
func openWorkspace(cmd *cobra.Command, path string) (*session, error) {
	dir := path
	if info, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	} else if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	timer := observ.NewTimer()
	ws, err := driver.LoadDir(cmd.Context(), dir, driver.LoadOptions{Timer: timer})
	if err != nil {
		return nil, err
	}
	return &session{ws: ws, timer: timer}, nil
}

func (s *session) fileID(path string) (source.FileID, error) {
	id, ok := s.ws.FileID(path)
	if !ok {
		return 0, fmt.Errorf("%s is not part of the workspace at %s", path, s.ws.Manifest.Dir)
	}
	return id, nil
}

// location renders a node as path:line:col, following macro files back to
// the file that holds the call.
func (s *session) location(n expand.InFileNode) string {
	file := s.ws.DB.OriginalFile(n.File)
	off := n.Value.Range().Start
	if call, ok := n.File.MacroCall(); ok {
		site := s.ws.DB.ExpansionInfo(call).CallSite
		for {
			next, ok := site.File.MacroCall()
			if !ok {
				break
			}
			site = s.ws.DB.ExpansionInfo(next).CallSite
		}
		off = site.Value.Range().Start
	}
	pos := s.ws.Files.Position(file, off)
	loc := fmt.Sprintf("%s:%d:%d", s.ws.Rel(s.ws.Files.Get(file).Path), pos.Line, pos.DisplayCol)
	if n.File.IsMacro() {
		loc += " (in " + n.File.String() + ")"
	}
	return loc
}

func (s *session) printTimings(cmd *cobra.Command) {
	if show, _ := cmd.Root().PersistentFlags().GetBool("timings"); show {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
}

// parseLineCol parses "LINE:COL", both 1-based.
func parseLineCol(s string) (source.LineCol, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return source.LineCol{}, fmt.Errorf("position %q: expected LINE:COL", s)
	}
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return source.LineCol{}, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return source.LineCol{}, fmt.Errorf("position %q: bad column", s)
	}
	return source.LineCol{Line: uint32(line), Col: uint32(col)}, nil
}

func jobsFlag(cmd *cobra.Command) int {
	jobs, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	return jobs
}

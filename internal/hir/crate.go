package hir

import (
	"srcdef/internal/cfg"
	"srcdef/internal/source"
)

// Crate is a node of the crate graph.
type Crate struct {
	Name      string
	Root      source.FileID
	Cfg       cfg.Options
	Deps      []CrateID
	ProcMacro bool
}

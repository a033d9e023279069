// Package semantics maps syntax nodes to the definitions they declare and
// back. A Session caches per-container identity maps and is meant to be used
// by one goroutine; run one session per goroutine over a shared hir.DB.
package semantics

import (
	"context"
	"fmt"

	"srcdef/internal/dynmap"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/source"
	"srcdef/internal/trace"
)

type cacheKey struct {
	container ChildContainer
	file      expand.HirFileID
}

// Stats counts cache traffic of a session.
type Stats struct {
	DynMapHits      int
	DynMapMisses    int
	ExpansionHits   int
	ExpansionMisses int
	FileHits        int
	FileMisses      int
}

func (s Stats) String() string {
	return fmt.Sprintf("dynmap %d/%d, expansion %d/%d, file %d/%d",
		s.DynMapHits, s.DynMapHits+s.DynMapMisses,
		s.ExpansionHits, s.ExpansionHits+s.ExpansionMisses,
		s.FileHits, s.FileHits+s.FileMisses)
}

type Session struct {
	db   *hir.DB
	span *trace.Span // anchor for the session's work spans

	dynmaps    map[cacheKey]*dynmap.Map
	expansions map[expand.MacroCallID]expand.ExpansionInfo
	fileMods   map[source.FileID][]hir.ModuleID
	stats      Stats
}

// New starts a session. The tracer and parent span come from ctx.
func New(ctx context.Context, db *hir.DB) *Session {
	return &Session{
		db:         db,
		span:       trace.Anchor(ctx),
		dynmaps:    make(map[cacheKey]*dynmap.Map),
		expansions: make(map[expand.MacroCallID]expand.ExpansionInfo),
		fileMods:   make(map[source.FileID][]hir.ModuleID),
	}
}

func (s *Session) DB() *hir.DB { return s.db }

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) expansionInfo(call expand.MacroCallID) expand.ExpansionInfo {
	if info, ok := s.expansions[call]; ok {
		s.stats.ExpansionHits++
		return info
	}
	s.stats.ExpansionMisses++
	info := s.db.ExpansionInfo(call)
	s.expansions[call] = info
	return info
}

// FileToDef returns the modules whose definition is file, across all
// crates the file belongs to. A file reached only through include! maps to
// the modules of the file containing the include! call. The result is
// empty, not nil, for detached files.
func (s *Session) FileToDef(file source.FileID) []hir.ModuleID {
	if mods, ok := s.fileMods[file]; ok {
		s.stats.FileHits++
		return mods
	}
	s.stats.FileMisses++
	sp := s.span.Child(trace.ScopeSession, "file_to_def")

	mods := make([]hir.ModuleID, 0, 1)
	for _, krate := range s.db.RelevantCrates(file) {
		dm := s.db.CrateDefMap(krate)
		before := len(mods)
		for _, local := range dm.ModulesForFile(file) {
			mods = append(mods, dm.ModuleID(local))
		}
		if len(mods) > before {
			continue
		}
		for _, inc := range dm.Includes {
			if inc.File != file {
				continue
			}
			callFile := s.db.OriginalFile(s.db.MacroCallLoc(inc.Call).Call.File)
			for _, local := range dm.ModulesForFile(callFile) {
				mods = append(mods, dm.ModuleID(local))
			}
		}
	}
	s.fileMods[file] = mods
	sp.Endf("file#%d: %d modules", file, len(mods))
	return mods
}

// cacheFor returns the identity map of container restricted to file,
// computing it on first use.
func (s *Session) cacheFor(c ChildContainer, file expand.HirFileID) *dynmap.Map {
	key := cacheKey{container: c, file: file}
	if m, ok := s.dynmaps[key]; ok {
		s.stats.DynMapHits++
		return m
	}
	s.stats.DynMapMisses++
	sp := s.span.Child(trace.ScopeSession, "child_by_source").Attr("container", c.Kind.String())
	m := dynmap.New()
	s.childBySource(c, file, m)
	s.dynmaps[key] = m
	sp.Endf("%s in %s: %d entries", c, file, m.Len())
	return m
}

// ChildrenOfIn returns the children of container declared in file.
func (s *Session) ChildrenOfIn(c ChildContainer, file expand.HirFileID) *dynmap.Map {
	return s.cacheFor(c, file)
}

// ChildrenOf returns the children of container declared in the file that
// holds the container's own definition.
func (s *Session) ChildrenOf(c ChildContainer) *dynmap.Map {
	return s.cacheFor(c, s.homeFile(c))
}

func (s *Session) homeFile(c ChildContainer) expand.HirFileID {
	db := s.db
	switch c.Kind {
	case ContainerModule:
		dm := db.DefMapOf(c.Module)
		origin := dm.Module(c.Module.Local).Origin
		switch origin.Kind {
		case hir.OriginCrateRoot, hir.OriginFile:
			return expand.FromFile(origin.DefFile)
		case hir.OriginInline:
			return origin.Decl.File
		default:
			return db.BlockLoc(origin.Block).Ast.File
		}
	case ContainerTrait:
		return db.TraitLoc(hir.TraitID(c.ID)).Tree.File
	case ContainerTraitAlias:
		return db.TraitAliasLoc(hir.TraitAliasID(c.ID)).Tree.File
	case ContainerImpl:
		return db.ImplLoc(hir.ImplID(c.ID)).Tree.File
	case ContainerEnum:
		return db.EnumLoc(hir.EnumID(c.ID)).Tree.File
	case ContainerTypeAlias:
		return db.TypeAliasLoc(hir.TypeAliasID(c.ID)).Tree.File
	case ContainerVariant:
		return db.VariantSource(c.Variant()).File
	case ContainerBody:
		return db.BodyOwnerSource(c.Body()).File
	case ContainerGenerics:
		return db.GenericParams(c.Generics()).File
	default:
		panic(fmt.Sprintf("semantics: no home file for %s", c))
	}
}

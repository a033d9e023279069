package hir

import (
	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

type TypeOrConstParam struct {
	Name  string
	Const bool
	// ImplicitSelf marks the Self parameter of traits and trait aliases.
	// Its pointer is the trait declaration itself.
	ImplicitSelf bool
	Ptr          syntax.Ptr
}

type LifetimeParam struct {
	Name string
	Ptr  syntax.Ptr
}

// GenericParams of one owner. Type and const parameters share an index
// space; lifetimes have their own.
type GenericParams struct {
	File         expand.HirFileID
	Owner        syntax.Ptr
	TypeOrConsts []TypeOrConstParam
	Lifetimes    []LifetimeParam
}

func (db *DB) GenericParams(def GenericDefID) *GenericParams {
	return query(db, &db.generics, "generic_params", def, func() *GenericParams {
		loc := db.genericDefLoc(def)
		opts := db.Crate(db.ContainerModule(loc.Container).Krate).Cfg
		src := db.ItemSource(loc)
		gp := &GenericParams{File: src.File, Owner: src.Value}
		if def.Kind == DefTrait || def.Kind == DefTraitAlias {
			gp.TypeOrConsts = append(gp.TypeOrConsts, TypeOrConstParam{
				Name:         "Self",
				ImplicitSelf: true,
				Ptr:          src.Value,
			})
		}
		list := db.node(src).ChildOfKind(syntax.GenericParamList)
		for _, p := range list.Children() {
			if !cfgEnabled(p, opts) {
				continue
			}
			name := source.NormalizeName(p.Name())
			switch p.Kind() {
			case syntax.TypeParam:
				gp.TypeOrConsts = append(gp.TypeOrConsts, TypeOrConstParam{Name: name, Ptr: p.Ptr()})
			case syntax.ConstParam:
				gp.TypeOrConsts = append(gp.TypeOrConsts, TypeOrConstParam{Name: name, Const: true, Ptr: p.Ptr()})
			case syntax.LifetimeParam:
				gp.Lifetimes = append(gp.Lifetimes, LifetimeParam{Name: name, Ptr: p.Ptr()})
			}
		}
		return gp
	})
}

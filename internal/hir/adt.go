package hir

import (
	"strconv"

	"srcdef/internal/cfg"
	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

type Shape uint8

const (
	ShapeUnit Shape = iota
	ShapeRecord
	ShapeTuple
)

type FieldData struct {
	Name string // tuple fields are named by position
}

type VariantData struct {
	Shape  Shape
	Fields []FieldData
}

// fieldTrace receives lowered fields in numbering order. Data mode builds
// the field arena, source mode records one pointer per field.
type fieldTrace struct {
	keepData bool
	data     []FieldData
	ptrs     []syntax.Ptr
}

func (t *fieldTrace) alloc(ptr syntax.Ptr, data func() FieldData) {
	if t.keepData {
		t.data = append(t.data, data())
		return
	}
	t.ptrs = append(t.ptrs, ptr)
}

// lowerFields is the only place fields get numbered. Disabled fields are
// skipped before numbering.
func lowerFields(n syntax.Node, opts cfg.Options, t *fieldTrace) Shape {
	if list := n.ChildOfKind(syntax.RecordFieldList); list.IsValid() {
		for _, f := range list.ChildrenOfKind(syntax.RecordField) {
			if !cfgEnabled(f, opts) {
				continue
			}
			t.alloc(f.Ptr(), func() FieldData {
				return FieldData{Name: source.NormalizeName(f.Name())}
			})
		}
		return ShapeRecord
	}
	if list := n.ChildOfKind(syntax.TupleFieldList); list.IsValid() {
		i := 0
		for _, f := range list.ChildrenOfKind(syntax.TupleField) {
			if !cfgEnabled(f, opts) {
				continue
			}
			pos := i
			t.alloc(f.Ptr(), func() FieldData { return FieldData{Name: strconv.Itoa(pos)} })
			i++
		}
		return ShapeTuple
	}
	return ShapeUnit
}

func (db *DB) VariantData(v VariantID) *VariantData {
	return query(db, &db.variantData, "variant_data", v, func() *VariantData {
		t := &fieldTrace{keepData: true}
		shape := lowerFields(db.node(db.VariantSource(v)), db.variantCfg(v), t)
		return &VariantData{Shape: shape, Fields: t.data}
	})
}

// VariantFieldSources re-lowers the fields of v recording their pointers.
// Index i of the result is the source of field i of VariantData(v).
func (db *DB) VariantFieldSources(v VariantID) (expand.HirFileID, []syntax.Ptr) {
	src := db.VariantSource(v)
	t := &fieldTrace{}
	lowerFields(db.node(src), db.variantCfg(v), t)
	return src.File, t.ptrs
}

func (db *DB) variantCfg(v VariantID) cfg.Options {
	return db.Crate(db.variantModule(v).Krate).Cfg
}

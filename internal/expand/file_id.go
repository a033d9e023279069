package expand

import (
	"fmt"

	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

// MacroCallID identifies one macro invocation. IDs start at 1.
type MacroCallID uint32

const NoMacroCallID MacroCallID = 0

func (id MacroCallID) IsValid() bool { return id != NoMacroCallID }

// HirFileID names either a real source file or the synthetic file produced
// by expanding a macro call. The high bit marks macro files.
type HirFileID uint32

const macroBit HirFileID = 1 << 31

func FromFile(id source.FileID) HirFileID {
	if HirFileID(id)&macroBit != 0 {
		panic(fmt.Sprintf("file id %d collides with macro file space", id))
	}
	return HirFileID(id)
}

func FromMacro(call MacroCallID) HirFileID {
	return macroBit | HirFileID(call)
}

func (h HirFileID) IsMacro() bool { return h&macroBit != 0 }

// MacroCall returns the call that produced h, if h is a macro file.
func (h HirFileID) MacroCall() (MacroCallID, bool) {
	if !h.IsMacro() {
		return NoMacroCallID, false
	}
	return MacroCallID(h &^ macroBit), true
}

// FileID returns the real file, if h is one.
func (h HirFileID) FileID() (source.FileID, bool) {
	if h.IsMacro() {
		return 0, false
	}
	return source.FileID(h), true
}

func (h HirFileID) String() string {
	if call, ok := h.MacroCall(); ok {
		return fmt.Sprintf("macro#%d", call)
	}
	return fmt.Sprintf("file#%d", uint32(h))
}

// InFile pairs a value with the real or macro file it belongs to.
type InFile[T any] struct {
	File  HirFileID
	Value T
}

func NewInFile[T any](file HirFileID, value T) InFile[T] {
	return InFile[T]{File: file, Value: value}
}

// InFileNode is the common case of a syntax node located in a file.
type InFileNode = InFile[syntax.Node]

// InFilePtr is a structural pointer located in a file.
type InFilePtr = InFile[syntax.Ptr]

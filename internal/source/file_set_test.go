package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("fn a() {}\r\nfn b() {}\r\n")...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "fn a() {}\nfn b() {}\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags not set: %b", f.Flags)
	}
	if got, ok := fs.Lookup(path); !ok || got != id {
		t.Fatalf("Lookup(%q) = %v, %v", path, got, ok)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.rs", []byte("mod a;\nfn main() {}\n"))

	start, end := fs.Resolve(Span{File: id, Start: 10, End: 14})
	if start != (LineCol{Line: 2, Col: 4}) || end != (LineCol{Line: 2, Col: 8}) {
		t.Fatalf("unexpected positions %+v %+v", start, end)
	}
	off, ok := fs.Offset(id, LineCol{Line: 2, Col: 4})
	if !ok || off != 10 {
		t.Fatalf("Offset = %d, %v", off, ok)
	}
	if _, ok := fs.Offset(id, LineCol{Line: 9, Col: 1}); ok {
		t.Fatalf("offset past end must fail")
	}
}

func TestPositionDisplayColumn(t *testing.T) {
	fs := NewFileSet()
	// wide runes take two cells each
	id := fs.AddVirtual("wide.rs", []byte("// 日本 x\n"))
	pos := fs.Position(id, uint32(len("// 日本 ")))
	if pos.Col != 11 {
		t.Fatalf("byte column = %d, want 11", pos.Col)
	}
	if pos.DisplayCol != 9 {
		t.Fatalf("display column = %d, want 9", pos.DisplayCol)
	}
}

func TestReplaceKeepsIDAndBumpsRevision(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("fn a() {}"))
	before := fs.Get(id).Hash

	rev := fs.Replace(id, []byte("fn b() {}\nfn c() {}"))
	if rev != 1 {
		t.Fatalf("rev = %d, want 1", rev)
	}
	f := fs.Get(id)
	if f.ID != id || f.Hash == before || len(f.LineIdx) != 1 {
		t.Fatalf("replace did not refresh file: %+v", f)
	}
	if fs.Len() != 1 {
		t.Fatalf("replace must not add files")
	}
}

func TestFileDirAndStem(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("src/foo/mod.rs", nil)
	f := fs.Get(id)
	if f.Dir() != "src/foo" || f.Stem() != "mod" {
		t.Fatalf("Dir/Stem = %q %q", f.Dir(), f.Stem())
	}
}

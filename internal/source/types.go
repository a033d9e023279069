package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	// IDs are stable: replacing a file's text keeps its ID and bumps Rev.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
	Rev     uint64 // bumped on every Replace
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// Position is a LineCol plus the on-screen column of the same offset.
type Position struct {
	LineCol
	DisplayCol int // 1-based, in terminal cells
}

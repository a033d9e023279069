package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"
)

// FileSet owns every source file of a workspace. Reads are safe from many
// sessions at once; Replace is expected between revisions.
type FileSet struct {
	mu    sync.RWMutex
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes and returns its FileID. Adding a
// path twice yields a second ID; the path index follows the newest one.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalizedPath := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Replace swaps the content of an existing file in place. The FileID stays the
// same, the revision counter of the file is incremented and returned.
func (fileSet *FileSet) Replace(id FileID, content []byte) uint64 {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	f := &fileSet.files[id]
	f.Content = content
	f.LineIdx = buildLineIndex(content)
	f.Hash = sha256.Sum256(content)
	f.Rev++
	return f.Rev
}

// Get returns a snapshot of the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f := fileSet.files[id]
	return &f
}

// Has reports whether id was handed out by this FileSet.
func (fileSet *FileSet) Has(id FileID) bool {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return int(id) < len(fileSet.files)
}

// Lookup returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len reports how many files were added.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// IDs returns every FileID in insertion order.
func (fileSet *FileSet) IDs() []FileID {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	out := make([]FileID, len(fileSet.files))
	for i := range fileSet.files {
		out[i] = fileSet.files[i].ID
	}
	return out
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f := &fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Position resolves an offset and also measures the display column, so that
// wide runes line up in terminal output.
func (fileSet *FileSet) Position(id FileID, offset uint32) Position {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f := &fileSet.files[id]
	lc := toLineCol(f.LineIdx, offset)
	lineStart := offset - (lc.Col - 1)
	end := min(int(offset), len(f.Content))
	prefix := ""
	if int(lineStart) <= end {
		prefix = string(f.Content[lineStart:end])
	}
	return Position{LineCol: lc, DisplayCol: runewidth.StringWidth(prefix) + 1}
}

// Offset converts a 1-based line/column pair into a byte offset.
func (fileSet *FileSet) Offset(id FileID, lc LineCol) (uint32, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f := &fileSet.files[id]
	if lc.Line == 0 || lc.Col == 0 {
		return 0, false
	}
	var start uint32
	if lc.Line > 1 {
		if int(lc.Line-2) >= len(f.LineIdx) {
			return 0, false
		}
		start = f.LineIdx[lc.Line-2] + 1
	}
	off := start + lc.Col - 1
	contentLen, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if off > contentLen {
		return 0, false
	}
	return off, true
}

// Dir returns the directory of the file, in slash form.
func (f *File) Dir() string {
	return filepath.ToSlash(filepath.Dir(f.Path))
}

// Stem returns the file name without extension.
func (f *File) Stem() string {
	base := filepath.Base(f.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

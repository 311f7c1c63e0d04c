package source

type (
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (editor buffer, test).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures the text of a single document together with its line index.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// Position is a zero-based line and UTF-16 character offset, as used by LSP clients.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open interval between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Less orders positions by line, then by character.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Contains reports whether pos lies inside r (end inclusive).
func (r Range) Contains(pos Position) bool {
	return !pos.Less(r.Start) && !r.End.Less(pos)
}

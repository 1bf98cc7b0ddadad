package debug

import (
	"hash/fnv"
	"strconv"
)

// Source identifies where a breakpoint lives.
type Source struct {
	// Name is either an explicit file path or a content-derived id.
	Name string
}

// Breakpoint is one line breakpoint within a source.
//
// Line is 1-indexed. Identity is positional: two breakpoints with the
// same (source, line) denote the same breakpoint. Uniqueness is the
// owning model's concern, not enforced here.
type Breakpoint struct {
	Line     int    `json:"line"`
	Active   bool   `json:"active"`
	Verified bool   `json:"verified"`
	Source   Source `json:"source"`
}

// Session identifies the active debug target.
type Session struct {
	// ID is a unique handle for one debug session.
	ID string
	// Path identifies the target; empty when the target has no file
	// identity (cell-based sources fall back to content ids).
	Path string
	// Name is the display name stamped onto newly created breakpoints.
	Name string
}

// CodeID derives a stable source identity from raw code text, for
// sources that have no path.
func CodeID(code string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	return strconv.FormatUint(h.Sum64(), 16)
}

// SourceID resolves a source identity: the path when present, otherwise
// the content id of code.
func SourceID(path, code string) string {
	if path != "" {
		return path
	}
	return CodeID(code)
}

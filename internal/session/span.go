// Package session owns the process-wide state that a single compilation
// needs but that must never leak across compilations: the interned-symbol
// table and the source map. Both live for the duration of one
// CreateSessionIfNotSetThen call and are torn down on exit, so two
// compilations in the same process never see each other's symbols or
// NodeIDs.
package session

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a byte range into the active Session's SourceMap. The zero Span
// is the sentinel "no location" span used by synthesized nodes before a
// span is attached.
type Span struct {
	Lo uint32
	Hi uint32
}

// Dummy is the sentinel empty span.
var Dummy = Span{}

func (s Span) IsDummy() bool { return s.Lo == 0 && s.Hi == 0 }

func (s Span) String() string {
	if s.IsDummy() {
		return "<no span>"
	}
	return fmt.Sprintf("%d..%d", s.Lo, s.Hi)
}

// Merge returns the smallest span containing both s and other. Dummy spans
// are ignored unless both are dummy.
func (s Span) Merge(other Span) Span {
	if s.IsDummy() {
		return other
	}
	if other.IsDummy() {
		return s
	}
	lo, hi := s.Lo, s.Hi
	if other.Lo < lo {
		lo = other.Lo
	}
	if other.Hi > hi {
		hi = other.Hi
	}
	return Span{Lo: lo, Hi: hi}
}

// SourceFile is one registered source file, addressable by an absolute
// byte range starting at AbsoluteStart.
type SourceFile struct {
	Name          string
	Src           string
	AbsoluteStart uint32
}

func (f *SourceFile) end() uint32 { return f.AbsoluteStart + uint32(len(f.Src)) }

// SourceMap is an append-only registry of source files with cumulative
// byte offsets, so a Span can be resolved to (file, line, col) by binary
// search over file starts.
type SourceMap struct {
	files []*SourceFile
}

// NewSourceMap creates an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{}
}

// NewSourceFile registers src under name and returns the SourceFile handle.
// The returned file's AbsoluteStart is stable for the life of the session.
func (m *SourceMap) NewSourceFile(src, name string) *SourceFile {
	start := uint32(1) // offset 0 is reserved, matches the Dummy span sentinel
	if n := len(m.files); n > 0 {
		start = m.files[n-1].end() + 1
	}
	f := &SourceFile{Name: name, Src: src, AbsoluteStart: start}
	m.files = append(m.files, f)
	return f
}

// Span returns the span covering the whole file, rebased by AbsoluteStart.
func (f *SourceFile) Span() Span {
	return Span{Lo: f.AbsoluteStart, Hi: f.end()}
}

// Lookup resolves an absolute byte position to its file, 1-based line, and
// 1-based column via binary search over registered file starts.
func (m *SourceMap) Lookup(pos uint32) (file *SourceFile, line, col int) {
	idx := sort.Search(len(m.files), func(i int) bool {
		return m.files[i].AbsoluteStart+uint32(len(m.files[i].Src)) >= pos
	})
	if idx == len(m.files) {
		if len(m.files) == 0 {
			return nil, 0, 0
		}
		idx = len(m.files) - 1
	}
	f := m.files[idx]
	rel := int(pos) - int(f.AbsoluteStart)
	if rel < 0 {
		rel = 0
	}
	if rel > len(f.Src) {
		rel = len(f.Src)
	}
	line, col = 1, 1
	for i := 0; i < rel && i < len(f.Src); i++ {
		if f.Src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return f, line, col
}

// LookupSpan resolves both ends of a span to human-readable positions.
func (m *SourceMap) LookupSpan(s Span) (file string, startLine, startCol, endLine, endCol int) {
	if s.IsDummy() {
		return "<no file>", 0, 0, 0, 0
	}
	f, l1, c1 := m.Lookup(s.Lo)
	_, l2, c2 := m.Lookup(s.Hi)
	if f == nil {
		return "<no file>", 0, 0, 0, 0
	}
	return f.Name, l1, c1, l2, c2
}

// SourceText returns the literal substring a span points at.
func (m *SourceMap) SourceText(s Span) string {
	if s.IsDummy() {
		return ""
	}
	idx := sort.Search(len(m.files), func(i int) bool {
		return m.files[i].AbsoluteStart+uint32(len(m.files[i].Src)) >= s.Lo
	})
	if idx == len(m.files) {
		return ""
	}
	f := m.files[idx]
	lo := int(s.Lo) - int(f.AbsoluteStart)
	hi := int(s.Hi) - int(f.AbsoluteStart)
	if lo < 0 || hi > len(f.Src) || lo > hi {
		return ""
	}
	return f.Src[lo:hi]
}

// LineText returns the 1-based line's text (without its trailing
// newline) from the named source file, for a diagnostic renderer that
// wants to print the offending source line. Returns "" if name isn't a
// registered file or line is out of range.
func (m *SourceMap) LineText(name string, line int) string {
	if line < 1 {
		return ""
	}
	for _, f := range m.files {
		if f.Name != name {
			continue
		}
		lines := strings.Split(f.Src, "\n")
		if line > len(lines) {
			return ""
		}
		return lines[line-1]
	}
	return ""
}

package session

// Session bundles the symbol interner and source map that must be shared
// by every stage of one compilation, and torn down between compilations so
// NodeIDs and symbol indices from one compile never leak into another.
type Session struct {
	Interner  *Interner
	SourceMap *SourceMap
}

var current *Session

// CreateSessionIfNotSetThen installs a fresh Session for the duration of f
// if one isn't already active, then tears it down on return. Nested entry
// is idempotent: a session already active is reused, not replaced, so
// helper functions may call this freely without clobbering an ancestor's
// state.
func CreateSessionIfNotSetThen(f func()) {
	if current != nil {
		f()
		return
	}
	current = &Session{Interner: newInterner(), SourceMap: NewSourceMap()}
	defer func() { current = nil }()
	f()
}

// Current returns the active session. It panics if called outside
// CreateSessionIfNotSetThen, since every caller that needs interning or a
// source map is expected to run within a session.
func Current() *Session {
	if current == nil {
		panic("session: no active session; wrap the call in session.CreateSessionIfNotSetThen")
	}
	return current
}

// Intern interns s in the active session.
func Intern(s string) Symbol { return Current().Interner.Intern(s) }

// Resolve returns the string behind sym in the active session.
func Resolve(sym Symbol) string { return Current().Interner.Resolve(sym) }

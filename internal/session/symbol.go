package session

// Symbol is an interned identifier. Equality is index equality, making it
// cheap to hash and compare regardless of the underlying string length.
type Symbol uint32

// Interner owns the process-(session-)wide string <-> Symbol mapping.
type Interner struct {
	strings []string
	ids     map[string]Symbol
}

func newInterner() *Interner {
	return &Interner{ids: make(map[string]Symbol)}
}

// Intern returns the Symbol for s, allocating a new one if s has not been
// seen before in this session.
func (in *Interner) Intern(s string) Symbol {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := Symbol(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

// Resolve returns the string a Symbol was interned from.
func (in *Interner) Resolve(sym Symbol) string {
	if int(sym) >= len(in.strings) {
		return "<invalid symbol>"
	}
	return in.strings[sym]
}

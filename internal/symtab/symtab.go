// Package symtab is the two-level symbol table built by
// internal/passes/symcreate and consulted by every later pass: a
// program-wide table of functions/composites/mappings/consts keyed by
// ast.Location, and a per-function stack of lexical block scopes keyed by
// the enclosing ast.BlockStmt's NodeID for O(1) child-frame lookup
// (spec.md §4.D). Modeled on the teacher's module/resolver.go
// NormalizePath + scope-stack shape, generalized from AILANG's
// module-path resolution to Leo's program/module/function nesting.
package symtab

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

// VarEntry is one variable binding: its declared type and the statement
// that introduced it.
type VarEntry struct {
	Name   session.Symbol
	Type   *types.Type
	DeclID ast.NodeID
	Mode   ast.Mode
}

// FuncEntry is one resolved function/transition signature.
type FuncEntry struct {
	Location  ast.Location
	Decl      *ast.Function
	Finalizer *ast.Location
}

// CompositeEntry is one resolved struct/record declaration.
type CompositeEntry struct {
	Location ast.Location
	Decl     *ast.Composite
}

// MappingEntry is one resolved program-scoped mapping.
type MappingEntry struct {
	Location ast.Location
	Decl     *ast.Mapping
}

// ConstEntry is one resolved program-scope constant.
type ConstEntry struct {
	Location ast.Location
	Decl     *ast.ConstDecl
	Type     *types.Type
}

// scope is one lexical block frame: the variables it directly introduces,
// plus a link to its parent for outward lookup.
type scope struct {
	parent *scope
	vars   map[session.Symbol]*VarEntry
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[session.Symbol]*VarEntry)}
}

func (s *scope) lookup(name session.Symbol) (*VarEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Table is the compile state's whole symbol table: program-wide
// declarations plus, while a function body is being walked, the live
// block-scope stack for that function (reset between functions).
type Table struct {
	Functions  map[string]*FuncEntry
	Composites map[string]*CompositeEntry
	Mappings   map[string]*MappingEntry
	Consts     map[string]*ConstEntry

	// blockFrames lets a later pass re-enter the scope active at a given
	// block without re-walking the function, keyed by the BlockStmt's
	// NodeID (spec.md §4.D "O(1) NodeID-keyed child-frame lookup").
	blockFrames map[ast.NodeID]*scope
	current     *scope
}

func New() *Table {
	return &Table{
		Functions:   make(map[string]*FuncEntry),
		Composites:  make(map[string]*CompositeEntry),
		Mappings:    make(map[string]*MappingEntry),
		Consts:      make(map[string]*ConstEntry),
		blockFrames: make(map[ast.NodeID]*scope),
	}
}

func key(loc ast.Location) string { return loc.String() }

func (t *Table) InsertFunction(e *FuncEntry) error {
	k := key(e.Location)
	if _, exists := t.Functions[k]; exists {
		return fmt.Errorf("duplicate function %s", k)
	}
	t.Functions[k] = e
	return nil
}

func (t *Table) LookupFunction(loc ast.Location) (*FuncEntry, bool) {
	e, ok := t.Functions[key(loc)]
	return e, ok
}

func (t *Table) InsertStruct(e *CompositeEntry) error {
	k := key(e.Location)
	if _, exists := t.Composites[k]; exists {
		return fmt.Errorf("duplicate composite %s", k)
	}
	t.Composites[k] = e
	return nil
}

func (t *Table) LookupComposite(loc ast.Location) (*CompositeEntry, bool) {
	e, ok := t.Composites[key(loc)]
	return e, ok
}

func (t *Table) InsertMapping(e *MappingEntry) error {
	k := key(e.Location)
	if _, exists := t.Mappings[k]; exists {
		return fmt.Errorf("duplicate mapping %s", k)
	}
	t.Mappings[k] = e
	return nil
}

func (t *Table) LookupMapping(loc ast.Location) (*MappingEntry, bool) {
	e, ok := t.Mappings[key(loc)]
	return e, ok
}

func (t *Table) InsertConst(e *ConstEntry) error {
	k := key(e.Location)
	if _, exists := t.Consts[k]; exists {
		return fmt.Errorf("duplicate const %s", k)
	}
	t.Consts[k] = e
	return nil
}

func (t *Table) LookupConst(loc ast.Location) (*ConstEntry, bool) {
	e, ok := t.Consts[key(loc)]
	return e, ok
}

// EnterFunction resets the block-scope stack for a fresh function body,
// seeding a root scope with its parameters.
func (t *Table) EnterFunction(params []*ast.Param, types_ []*types.Type) {
	t.current = newScope(nil)
	for i, p := range params {
		var ty *types.Type
		if i < len(types_) {
			ty = types_[i]
		}
		t.current.vars[p.Name] = &VarEntry{Name: p.Name, Type: ty, DeclID: p.NID, Mode: p.Mode}
	}
}

// EnterBlock pushes a new child scope for block, recording it so a later
// pass can jump directly back into it via ScopeAt.
func (t *Table) EnterBlock(block *ast.BlockStmt) {
	t.current = newScope(t.current)
	t.blockFrames[block.ID()] = t.current
}

// ExitBlock pops the current block scope.
func (t *Table) ExitBlock() {
	if t.current != nil {
		t.current = t.current.parent
	}
}

// InsertVariable binds name in the current block scope.
func (t *Table) InsertVariable(name session.Symbol, ty *types.Type, declID ast.NodeID, mode ast.Mode) error {
	if t.current == nil {
		return fmt.Errorf("symtab: InsertVariable called outside EnterFunction/EnterBlock")
	}
	if _, exists := t.current.vars[name]; exists {
		return fmt.Errorf("duplicate variable %s in this scope", session.Resolve(name))
	}
	t.current.vars[name] = &VarEntry{Name: name, Type: ty, DeclID: declID, Mode: mode}
	return nil
}

// LookupVariable searches the current scope and its ancestors.
func (t *Table) LookupVariable(name session.Symbol) (*VarEntry, bool) {
	if t.current == nil {
		return nil, false
	}
	return t.current.lookup(name)
}

// ScopeAt jumps the live scope pointer directly to the frame recorded for
// block, in O(1), without re-walking enclosing statements.
func (t *Table) ScopeAt(block *ast.BlockStmt) bool {
	s, ok := t.blockFrames[block.ID()]
	if ok {
		t.current = s
	}
	return ok
}

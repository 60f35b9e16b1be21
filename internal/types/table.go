package types

import "github.com/ProvableHQ/leo-sub007/internal/ast"

// Table is the NodeID -> Type map populated by internal/passes/typecheck.
// Its totality invariant (spec.md §4.D): after type checking completes
// with no errors, every ast.Expr node reachable from the program has an
// entry. Later passes (constfold, monomorphize, codegen) read it instead
// of re-deriving types.
type Table struct {
	byNode map[ast.NodeID]*Type
}

func NewTable() *Table {
	return &Table{byNode: make(map[ast.NodeID]*Type)}
}

func (t *Table) Set(id ast.NodeID, ty *Type) {
	t.byNode[id] = ty
}

// Get returns the type recorded for id and whether it was present.
func (t *Table) Get(id ast.NodeID) (*Type, bool) {
	ty, ok := t.byNode[id]
	return ty, ok
}

// MustGet panics if id has no recorded type, matching the totality
// invariant: any pass running after type checking that hits a miss has
// found an internal compiler error (diag.IntTypeTableMiss), not a user
// error.
func (t *Table) MustGet(id ast.NodeID) *Type {
	ty, ok := t.byNode[id]
	if !ok {
		panic("types: Type Table miss for node that should have been typed")
	}
	return ty
}

func (t *Table) Len() int { return len(t.byNode) }

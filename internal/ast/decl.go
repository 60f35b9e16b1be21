package ast

import "github.com/ProvableHQ/leo-sub007/internal/session"

// FunctionVariant is the calling discipline of a Function.
type FunctionVariant int

const (
	VariantInline FunctionVariant = iota
	VariantFunction
	VariantTransition
	VariantAsyncFunction
	VariantAsyncTransition
	VariantScript
	VariantConstructor
)

func (v FunctionVariant) String() string {
	switch v {
	case VariantInline:
		return "inline"
	case VariantFunction:
		return "function"
	case VariantTransition:
		return "transition"
	case VariantAsyncFunction:
		return "async function"
	case VariantAsyncTransition:
		return "async transition"
	case VariantScript:
		return "script"
	case VariantConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// IsAsync reports whether values of this variant return/consume Futures.
func (v FunctionVariant) IsAsync() bool {
	return v == VariantAsyncFunction || v == VariantAsyncTransition
}

// Param is a function input/output/const-parameter.
type Param struct {
	Base
	Name session.Symbol
	Type TypeExpr
	Mode Mode
}

// Function is a top-level callable: inline, function, transition, async
// function, async transition, script, or constructor.
type Function struct {
	Base
	Name         session.Symbol
	Variant      FunctionVariant
	ConstParams  []*Param
	Inputs       []*Param
	Outputs      []*Param
	Body         *BlockStmt
	Annotations  []string
	// Finalizer is set on an AsyncTransition: the Location of the
	// AsyncFunction that executes its finalize logic.
	Finalizer *Location
}

func (f *Function) declNode() {}

// Composite is a struct or record declaration.
type Composite struct {
	Base
	Name        session.Symbol
	Members     []*Member
	ConstParams []*Param
	IsRecord    bool
	// External is set when this Composite is the local re-declaration of
	// an external program's stub struct/record (symtab permits exactly one
	// such shadow per external composite).
	External *session.Symbol
}

// Member is a struct/record field.
type Member struct {
	Base
	Name session.Symbol
	Type TypeExpr
	Mode Mode // ModeRecord's `owner` member, ModeConstant for const fields, etc.
}

func (c *Composite) declNode() {}

// Mapping is a program-scoped persistent key-value declaration.
type Mapping struct {
	Base
	Name    session.Symbol
	Key     TypeExpr
	Value   TypeExpr
	Program session.Symbol
}

func (m *Mapping) declNode() {}

// ConstDecl is a program-scope `const NAME: T = expr;`.
type ConstDecl struct {
	Base
	Name  session.Symbol
	Type  TypeExpr
	Value Expr
}

func (c *ConstDecl) declNode() {}

// Decl is any program-scope declaration.
type Decl interface {
	Node
	declNode()
}

// ModuleScope is a nested `module a::b { ... }` declaration: its own
// functions/composites/mappings/consts plus child modules, addressed by
// Path relative to the owning program.
type ModuleScope struct {
	Base
	Path       []session.Symbol
	Consts     []*ConstDecl
	Composites []*Composite
	Mappings   []*Mapping
	Functions  []*Function
	Modules    []*ModuleScope
}

// ProgramScope is one Leo program's top-level declarations (spec.md §3.1).
type ProgramScope struct {
	Base
	Program     session.Symbol
	Consts      []*ConstDecl
	Composites  []*Composite
	Mappings    []*Mapping
	Functions   []*Function
	Interfaces  []session.Symbol
	Constructor *Function
	Modules     []*ModuleScope
}

// FunctionStub is an imported program's function signature, with no body,
// produced by the disassembler collaborator (internal/disasm) from
// bytecode.
type FunctionStub struct {
	Name      session.Symbol
	Variant   FunctionVariant
	Inputs    []*Param
	Outputs   []*Param
	Finalizer *Location // synthesized "finalize/<name>" for AsyncTransition stubs
}

// Stub is a program-summary derived by disassembling an imported program's
// bytecode: enough to type-check calls into it without its source.
type Stub struct {
	Program    session.Symbol
	Functions  []*FunctionStub
	Composites []*Composite
	Mappings   []*Mapping
	Imports    []session.Symbol
}

// Program is the root of one compilation unit: the local program's
// scope(s), its module tree, and the stubs of everything it imports,
// topologically ordered by internal/imports before passes run (spec.md
// §3.1, §3.2 "Import topology").
type Program struct {
	Base
	MainProgram  session.Symbol
	Scopes       []*ProgramScope
	Imports      []session.Symbol
	Stubs        []*Stub
}

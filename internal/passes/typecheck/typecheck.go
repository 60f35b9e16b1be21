// Package typecheck is lowering pass 3 (spec.md §4.I.3): resolves every
// ast.TypeExpr to a semantic internal/types.Type, infers the type of every
// expression, and fills the compile state's Type Table so that the
// totality invariant holds afterward — every expression NodeID has an
// entry (spec.md §4.D). Grounded on the teacher's internal/types
// unification engine's overall shape (synthesize-and-check per node), but
// without unification: Leo has no generics over value types, so each node
// gets exactly one ground Type, never a scheme.
package typecheck

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/passes"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

type Pass struct{}

func (Pass) Name() string { return "type-checking" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	passes.WalkFunctions(st.Program, func(scope *ast.ProgramScope, f *ast.Function) {
		c := &checker{st: st, scope: scope, fn: f}
		if !c.checkFunction() {
			ok = false
		}
	})
	return ok
}

type checker struct {
	st       *compiler.CompilerState
	scope    *ast.ProgramScope
	fn       *ast.Function
	hadError bool
}

func (c *checker) checkFunction() bool {
	paramTypes := make([]*types.Type, len(c.fn.Inputs))
	for i, p := range c.fn.Inputs {
		paramTypes[i] = c.resolveType(p.Type)
	}
	c.st.Symbols.EnterFunction(c.fn.Inputs, paramTypes)
	for _, cp := range c.fn.ConstParams {
		_ = c.st.Symbols.InsertVariable(cp.Name, c.resolveType(cp.Type), cp.NID, cp.Mode)
	}
	outTypes := make([]*types.Type, len(c.fn.Outputs))
	for i, o := range c.fn.Outputs {
		outTypes[i] = c.resolveType(o.Type)
	}
	if c.fn.Body != nil {
		c.checkBlock(c.fn.Body, outTypes)
		want := combineOutputs(outTypes)
		if want != nil && want.Kind != types.KindUnit && !blockAlwaysReturns(c.fn.Body) {
			c.errorf(c.fn, diag.TypeMissingReturn, "%s %s does not return a value on every path",
				c.fn.Variant, session.Resolve(c.fn.Name))
		}
	}
	return !c.hadError
}

// blockAlwaysReturns mirrors the remove-unreachable pass's rule: a
// conditional returns only when both branches do, and a loop body's
// return proves nothing (the loop may run zero times).
func blockAlwaysReturns(b *ast.BlockStmt) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Statements {
		switch n := s.(type) {
		case *ast.ReturnStmt:
			return true
		case *ast.BlockStmt:
			if blockAlwaysReturns(n) {
				return true
			}
		case *ast.ConditionalStmt:
			if n.Else != nil && blockAlwaysReturns(n.Then) && blockAlwaysReturns(n.Else) {
				return true
			}
		}
	}
	return false
}

func (c *checker) checkBlock(b *ast.BlockStmt, outTypes []*types.Type) {
	c.st.Symbols.EnterBlock(b)
	for _, s := range b.Statements {
		c.checkStmt(s, outTypes)
	}
	c.st.Symbols.ExitBlock()
}

func (c *checker) checkStmt(s ast.Stmt, outTypes []*types.Type) {
	switch n := s.(type) {
	case *ast.DefinitionStmt:
		vt := c.infer(n.Value)
		mode := ast.ModeNone
		if n.Kind == ast.DeclConst {
			mode = ast.ModeConst
		}
		for i, name := range n.Names {
			declared := vt
			if i < len(n.Types) && n.Types[i] != nil {
				declared = c.resolveType(n.Types[i])
				if len(n.Names) == 1 {
					// The declared annotation is the contextual expectation:
					// an unsuffixed integer literal takes its width from it
					// (bidirectional inference, PartialType).
					if resolved, ok := types.Partialize(declared).Match(vt); ok {
						c.fixLiteralWidth(n.Value, declared)
						c.st.Types.Set(n.Value.ID(), resolved)
					} else {
						c.errorf(n, diag.TypeMismatch, "cannot assign %s to declared type %s", vt, declared)
					}
				}
			}
			_ = c.st.Symbols.InsertVariable(name, declared, n.ID(), mode)
		}
	case *ast.AssignStmt:
		c.checkConstMutation(n.Place)
		pt := c.infer(n.Place)
		vt := c.infer(n.Value)
		if !types.Assignable(pt, vt) {
			c.errorf(n, diag.TypeMismatch, "cannot assign %s to %s", vt, pt)
		}
	case *ast.BlockStmt:
		c.checkBlock(n, outTypes)
	case *ast.ConditionalStmt:
		ct := c.infer(n.Cond)
		if ct != nil && ct.Kind != types.KindBool {
			c.errorf(n, diag.TypeMismatch, "if condition must be bool, got %s", ct)
		}
		c.checkBlock(n.Then, outTypes)
		if n.Else != nil {
			c.checkBlock(n.Else, outTypes)
		}
	case *ast.IterationStmt:
		st := c.infer(n.Start)
		sp := c.infer(n.Stop)
		if st != nil && st.Kind != types.KindInt {
			c.errorf(n, diag.TypeNonIntegerLoop, "loop bound must be an integer type, got %s", st)
		} else if sp != nil && !sp.Equal(st) {
			c.errorf(n, diag.TypeMismatch, "loop start/stop types differ: %s vs %s", st, sp)
		}
		c.st.Symbols.EnterBlock(n.Body)
		loopTy := c.resolveType(n.VarType)
		_ = c.st.Symbols.InsertVariable(n.Variable, loopTy, n.ID(), ast.ModeConst)
		for _, child := range n.Body.Statements {
			c.checkStmt(child, outTypes)
		}
		c.st.Symbols.ExitBlock()
	case *ast.ReturnStmt:
		vt := c.infer(n.Value)
		want := combineOutputs(outTypes)
		if want == nil {
			return
		}
		if n.Value == nil {
			if want.Kind != types.KindUnit {
				c.errorf(n, diag.TypeMismatch, "bare return in a function declaring output %s", want)
			}
			return
		}
		if resolved, ok := types.Partialize(want).Match(vt); ok {
			c.fixLiteralWidth(n.Value, want)
			c.st.Types.Set(n.Value.ID(), resolved)
		} else {
			c.errorf(n, diag.TypeMismatch, "return type %s does not match declared output %s", vt, want)
		}
	case *ast.ExprStmt:
		c.infer(n.Expr)
	case *ast.ConsoleStmt:
		for _, a := range n.Args {
			c.infer(a)
		}
	}
}

func combineOutputs(outs []*types.Type) *types.Type {
	switch len(outs) {
	case 0:
		return types.Unit()
	case 1:
		return outs[0]
	default:
		return types.Tuple(outs...)
	}
}

// infer synthesizes e's type, recording it into the Type Table, and
// recurses into children first (matching the teacher's bottom-up
// unification order, minus the unification).
func (c *checker) infer(e ast.Expr) *types.Type {
	if e == nil {
		return nil
	}
	var t *types.Type
	switch n := e.(type) {
	case *ast.Literal:
		t = c.inferLiteral(n)
	case *ast.PathExpr:
		t = c.inferPath(n)
	case *ast.BinaryExpr:
		t = c.inferBinary(n)
	case *ast.UnaryExpr:
		lt := c.infer(n.Expr)
		t = lt
	case *ast.TernaryExpr:
		ct := c.infer(n.Cond)
		if ct != nil && ct.Kind != types.KindBool {
			c.errorf(n, diag.TypeMismatch, "ternary condition must be bool, got %s", ct)
		}
		thenTy := c.infer(n.Then)
		elseTy := c.infer(n.Else)
		if thenTy != nil && elseTy != nil && !thenTy.Equal(elseTy) {
			c.errorf(n, diag.TypeMismatch, "ternary branches disagree: %s vs %s", thenTy, elseTy)
		}
		t = thenTy
	case *ast.CallExpr:
		t = c.inferCall(n)
	case *ast.IntrinsicCallExpr:
		for _, a := range n.Arguments {
			c.infer(a)
		}
		t = c.inferIntrinsic(n)
	case *ast.CastExpr:
		src := c.infer(n.Expr)
		t = c.resolveType(n.Type)
		if src != nil && t != nil && (src.Kind != types.KindInt || t.Kind != types.KindInt) {
			c.errorf(n, diag.TypeIllegalCast, "cannot cast %s to %s: casts are only legal between integer types", src, t)
		}
	case *ast.ArrayAccessExpr:
		at := c.infer(n.Array)
		c.infer(n.Index)
		if at != nil && at.Kind == types.KindArray {
			t = at.Elem
		}
	case *ast.TupleAccessExpr:
		tt := c.infer(n.Tuple)
		if tt != nil && tt.Kind == types.KindTuple && n.Index < len(tt.Elements) {
			t = tt.Elements[n.Index]
		}
	case *ast.MemberAccessExpr:
		t = c.inferMember(n)
	case *ast.StructLit:
		for _, f := range n.Fields {
			c.infer(f.Value)
		}
		t = types.Struct(n.Name)
		if entry, found := c.st.Symbols.LookupComposite(ast.Location{Program: c.scope.Program, Path: []session.Symbol{n.Name}}); found && entry.Decl.IsRecord {
			t = types.Record(n.Name)
		}
	case *ast.TupleLit:
		elems := make([]*types.Type, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = c.infer(el)
		}
		t = types.Tuple(elems...)
	case *ast.ArrayLit:
		var elem *types.Type
		for _, el := range n.Elements {
			elem = c.infer(el)
		}
		t = types.Array(elem, uint32(len(n.Elements)))
	case *ast.UnitExpr:
		t = types.Unit()
	}
	if t != nil {
		c.st.Types.Set(e.ID(), t)
	}
	return t
}

func (c *checker) inferLiteral(l *ast.Literal) *types.Type {
	switch l.Kind {
	case ast.LitBool:
		return types.Bool()
	case ast.LitField:
		return types.Field()
	case ast.LitGroup:
		return types.Group()
	case ast.LitScalar:
		return types.Scalar()
	case ast.LitAddress:
		return types.Address()
	case ast.LitSignature:
		return types.Signature()
	case ast.LitChar:
		return types.Char()
	case ast.LitString:
		return types.StringTy()
	case ast.LitInt:
		if w, ok := intWidthFromSuffix(l.Subtype); ok {
			return types.Int(w)
		}
		// Unsuffixed: an integer of not-yet-known width. The surrounding
		// context (declared type, other operand, output type) fixes it via
		// PartialType matching; see fixLiteralWidth.
		return &types.Type{Kind: types.KindInt}
	}
	return nil
}

func intWidthFromSuffix(suffix string) (types.IntWidth, bool) {
	widths := map[string]types.IntWidth{
		"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
		"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	}
	w, ok := widths[suffix]
	return w, ok
}

func (c *checker) inferPath(p *ast.PathExpr) *types.Type {
	if p.Local != nil {
		if v, found := c.st.Symbols.LookupVariable(p.Local.Name); found {
			return v.Type
		}
		return nil
	}
	if p.Global != nil {
		if e, found := c.st.Symbols.LookupConst(*p.Global); found {
			return e.Type
		}
		if _, found := c.st.Symbols.LookupComposite(*p.Global); found {
			return types.Struct(p.Global.Path[len(p.Global.Path)-1])
		}
		if e, found := c.st.Symbols.LookupMapping(*p.Global); found {
			return types.Mapping(c.resolveType(e.Decl.Key), c.resolveType(e.Decl.Value))
		}
	}
	c.errorf(p, diag.SymUnknownVariable, "unresolved path %s has no type", p.String())
	return nil
}

func (c *checker) inferBinary(b *ast.BinaryExpr) *types.Type {
	lt := c.infer(b.Left)
	rt := c.infer(b.Right)
	switch b.Op {
	case ast.OpEq, ast.OpNeq:
		return types.Bool()
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return types.Bool()
	case ast.OpAnd, ast.OpOr:
		return types.Bool()
	default:
		// One open-width integer operand takes the other side's width
		// (contextual inference for unsuffixed literals).
		if lt != nil && rt != nil && lt.Kind == types.KindInt && rt.Kind == types.KindInt && lt.Width != rt.Width {
			zero := types.IntWidth{}
			if lt.Width == zero {
				c.fixLiteralWidth(b.Left, rt)
				c.st.Types.Set(b.Left.ID(), rt)
				return rt
			}
			if rt.Width == zero {
				c.fixLiteralWidth(b.Right, lt)
				c.st.Types.Set(b.Right.ID(), lt)
				return lt
			}
		}
		if lt != nil && rt != nil && !lt.Equal(rt) {
			c.errorf(b, diag.TypeMismatch, "operands of %s differ: %s vs %s", b.Op, lt, rt)
		}
		return lt
	}
}

func (c *checker) inferCall(call *ast.CallExpr) *types.Type {
	for _, a := range call.Arguments {
		c.infer(a)
	}
	for _, a := range call.ConstArguments {
		c.infer(a)
	}
	path, ok := call.Callee.(*ast.PathExpr)
	if !ok || path.Global == nil {
		c.errorf(call, diag.TypeNotCallable, "call target did not resolve to a global function")
		return nil
	}
	entry, found := c.st.Symbols.LookupFunction(*path.Global)
	if !found {
		c.errorf(call, diag.SymUnknownFunction, "call to undefined function %s", path.Global.String())
		return nil
	}
	call.Target = path.Global
	if len(call.Arguments) != len(entry.Decl.Inputs) {
		c.errorf(call, diag.TypeWrongArity, "%s expects %d arguments, got %d",
			path.Global.String(), len(entry.Decl.Inputs), len(call.Arguments))
	}
	outs := make([]*types.Type, len(entry.Decl.Outputs))
	for i, o := range entry.Decl.Outputs {
		outs[i] = c.resolveType(o.Type)
	}
	if entry.Decl.Variant.IsAsync() {
		return types.Future(outs...)
	}
	return combineOutputs(outs)
}

func (c *checker) inferMember(m *ast.MemberAccessExpr) *types.Type {
	rt := c.infer(m.Receiver)
	if rt == nil || (rt.Kind != types.KindStruct && rt.Kind != types.KindRecord) {
		return nil
	}
	entry, found := c.st.Symbols.LookupComposite(ast.Location{Program: c.scope.Program, Path: []session.Symbol{rt.Name}})
	if !found {
		return nil
	}
	for _, mem := range entry.Decl.Members {
		if mem.Name == m.Member {
			return c.resolveType(mem.Type)
		}
	}
	c.errorf(m, diag.SymUnknownVariable, "no member %s on %s", session.Resolve(m.Member), rt)
	return nil
}

// inferIntrinsic gives a best-effort result type for the seeded intrinsic
// table (SPEC_FULL.md "Supplemented features"): rand_* functions return
// the type their name encodes, signature::verify returns bool, and every
// hash/commit function is typed field, whatever its output domain.
func (c *checker) inferIntrinsic(i *ast.IntrinsicCallExpr) *types.Type {
	switch {
	case hasPrefix(i.Name, "self."):
		return c.inferSelfField(i)
	case hasPrefix(i.Name, "Mapping::"):
		return c.inferMappingOp(i)
	case i.Name == "signature::verify":
		return types.Bool()
	case i.Name == "group::to_x_coordinate" || i.Name == "group::to_y_coordinate":
		return types.Field()
	case hasPrefix(i.Name, "ChaCha::rand_"):
		suffix := i.Name[len("ChaCha::rand_"):]
		if w, ok := intWidthFromSuffix(suffix); ok {
			return types.Int(w)
		}
		switch suffix {
		case "bool":
			return types.Bool()
		case "field":
			return types.Field()
		case "group":
			return types.Group()
		case "scalar":
			return types.Scalar()
		case "address":
			return types.Address()
		}
		return nil
	default:
		// BHP/Pedersen/Poseidon/Keccak/SHA3 hash and commit functions are
		// all typed field. A surrounding CastExpr does not retype them:
		// casts type-check only between integer types.
		return types.Field()
	}
}

func hasPrefix(s, p string) bool { return len(s) >= len(p) && s[:len(p)] == p }

// inferSelfField types the execution-context fields reachable through
// `self`: caller (the address that invoked this transition directly),
// signer (the address that signed the top-level request), and address
// (the program's own account address) are all addresses. A field not in
// the table is a type error, not a silent field-typed fallthrough.
func (c *checker) inferSelfField(i *ast.IntrinsicCallExpr) *types.Type {
	switch i.Name[len("self."):] {
	case "caller", "signer", "address":
		return types.Address()
	default:
		c.errorf(i, diag.TypeSelfOutsideCtx, "unknown self field %s", i.Name)
		return nil
	}
}

// inferMappingOp types the on-chain key-value intrinsics: get/get_or_use
// yield the mapping's value type, contains yields bool, set/remove yield
// unit. The first argument names the mapping, whose type inferPath
// resolved to KindMapping above.
func (c *checker) inferMappingOp(i *ast.IntrinsicCallExpr) *types.Type {
	op := i.Name[len("Mapping::"):]
	var mapTy *types.Type
	if len(i.Arguments) > 0 {
		mapTy, _ = c.st.Types.Get(i.Arguments[0].ID())
	}
	switch op {
	case "get", "get_or_use":
		if mapTy != nil && mapTy.Kind == types.KindMapping {
			return mapTy.Value
		}
		c.errorf(i, diag.TypeMismatch, "%s requires a mapping as its first argument", i.Name)
		return nil
	case "contains":
		return types.Bool()
	case "set", "remove":
		return types.Unit()
	default:
		c.errorf(i, diag.SymUnknownFunction, "unknown mapping operation %s", i.Name)
		return nil
	}
}

// resolveType converts surface syntax into the closed semantic lattice.
// Unknown names are assumed to be local struct/record declarations;
// Program-qualified names become KindExternal pending a stub match.
func (c *checker) resolveType(te ast.TypeExpr) *types.Type {
	if te == nil {
		return nil
	}
	switch n := te.(type) {
	case *ast.NamedType:
		if n.Program != nil {
			return &types.Type{Kind: types.KindExternal, Name: n.Name, Program: *n.Program}
		}
		if t, ok := primitiveType(n.Name); ok {
			return t
		}
		if entry, found := c.st.Symbols.LookupComposite(ast.Location{Program: c.scope.Program, Path: []session.Symbol{n.Name}}); found {
			if entry.Decl.IsRecord {
				return types.Record(n.Name)
			}
			return types.Struct(n.Name)
		}
		return types.Struct(n.Name)
	case *ast.ArrayType:
		elem := c.resolveType(n.Element)
		if n.Len == nil {
			return types.Array(elem, 0)
		}
		length := constIntLiteral(n.Len)
		return types.Array(elem, length)
	case *ast.TupleType:
		elems := make([]*types.Type, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = c.resolveType(el)
		}
		return types.Tuple(elems...)
	case *ast.MappingType:
		return types.Mapping(c.resolveType(n.Key), c.resolveType(n.Value))
	case *ast.FutureType:
		inputs := make([]*types.Type, len(n.Inputs))
		for i, in := range n.Inputs {
			inputs[i] = c.resolveType(in)
		}
		return types.Future(inputs...)
	case *ast.UnitType:
		return types.Unit()
	}
	return nil
}

func constIntLiteral(e ast.Expr) uint32 {
	if l, ok := e.(*ast.Literal); ok && l.Kind == ast.LitInt {
		var n uint32
		for _, ch := range l.Value {
			if ch < '0' || ch > '9' {
				break
			}
			n = n*10 + uint32(ch-'0')
		}
		return n
	}
	return 0
}

var primitiveNames = map[string]func() *types.Type{
	"bool": types.Bool, "field": types.Field, "group": types.Group, "scalar": types.Scalar,
	"address": types.Address, "signature": types.Signature, "char": types.Char, "string": types.StringTy,
}

func primitiveType(name session.Symbol) (*types.Type, bool) {
	s := session.Resolve(name)
	if ctor, ok := primitiveNames[s]; ok {
		return ctor(), true
	}
	if w, ok := intWidthFromSuffix(s); ok {
		return types.Int(w), true
	}
	return nil, false
}

// checkConstMutation rejects assignment through a binding declared with
// `const` (or a Const/Constant-mode parameter). Access places (`a[0]`,
// `s.f`, `t.0`) are checked against their base variable.
func (c *checker) checkConstMutation(place ast.Expr) {
	switch n := place.(type) {
	case *ast.PathExpr:
		if n.Local == nil {
			return
		}
		if v, found := c.st.Symbols.LookupVariable(n.Local.Name); found {
			if v.Mode == ast.ModeConst || v.Mode == ast.ModeConstant {
				c.errorf(n, diag.TypeConstMutation, "cannot assign to const binding %s", session.Resolve(n.Local.Name))
			}
		}
	case *ast.ArrayAccessExpr:
		c.checkConstMutation(n.Array)
	case *ast.TupleAccessExpr:
		c.checkConstMutation(n.Tuple)
	case *ast.MemberAccessExpr:
		c.checkConstMutation(n.Receiver)
	}
}

// fixLiteralWidth back-fills an unsuffixed integer literal's subtype from
// its contextual declared type, so constant folding downstream knows
// which width to range-check against.
func (c *checker) fixLiteralWidth(e ast.Expr, declared *types.Type) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Subtype != "" {
		return
	}
	if declared != nil && declared.Kind == types.KindInt {
		lit.Subtype = declared.Width.String()
	}
}

func (c *checker) errorf(n ast.Node, code, format string, args ...interface{}) {
	c.hadError = true
	var span *diag.SpanInfo
	if n != nil && !n.Span().IsDummy() {
		sm := session.Current().SourceMap
		file, sl, sc, el, ec := sm.LookupSpan(n.Span())
		span = &diag.SpanInfo{File: file, StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec, Line: sm.LineText(file, sl)}
	}
	c.st.Handler.Emit(&diag.Report{
		Code: code, Kind: diag.KindType, Severity: diag.SeverityError,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
}

// Package disasm is the §4.J "External collaborators" bytecode reader:
// it turns the AVM assembly text internal/codegen emits for one program
// back into an *ast.Stub — enough of that program's public surface
// (function signatures, composites, mappings) for internal/imports and
// internal/passes/symcreate to register it as if it were a second local
// program, without ever re-parsing or re-typechecking its body. Grounded
// on the teacher's internal/module/loader.go line-oriented scan of a
// serialized manifest into an in-memory tree, generalized from
// AILANG's module manifest format to the AVM assembly grammar
// internal/codegen defines.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// Disassemble parses src (one program's AVM assembly text, as returned by
// internal/codegen.Generate) into an *ast.Stub. It recovers only
// signatures: a transition/constructor's input/output list and mode, a
// struct/record's member list, and a mapping's key/value types. Function
// bodies are scanned past, not interpreted. nb mints NodeIDs for the
// synthesized Composite/Member/Mapping nodes so they fit into the same
// NodeBuilder-owned id space as the rest of the compilation unit; the
// TypeExpr and Param nodes it builds keep the zero NodeID.
func Disassemble(src string, nb *ast.NodeBuilder) (*ast.Stub, error) {
	p := &disassembler{lines: strings.Split(src, "\n"), nb: nb}
	return p.run()
}

type disassembler struct {
	lines []string
	pos   int
	nb    *ast.NodeBuilder

	stub *ast.Stub
}

func (p *disassembler) run() (*ast.Stub, error) {
	p.stub = &ast.Stub{}
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" {
			p.pos++
			continue
		}
		switch {
		case strings.HasPrefix(line, "program "):
			name := strings.TrimSuffix(strings.TrimPrefix(line, "program "), ";")
			p.stub.Program = session.Intern(strings.TrimSpace(name))
			p.pos++
		case strings.HasPrefix(line, "import "):
			name := strings.TrimSuffix(strings.TrimPrefix(line, "import "), ";")
			p.stub.Imports = append(p.stub.Imports, session.Intern(strings.TrimSpace(name)))
			p.pos++
		case strings.HasPrefix(line, "struct ") && strings.HasSuffix(line, ":"):
			c, err := p.parseComposite(line, "struct ", false)
			if err != nil {
				return nil, err
			}
			p.stub.Composites = append(p.stub.Composites, c)
		case strings.HasPrefix(line, "record ") && strings.HasSuffix(line, ":"):
			c, err := p.parseComposite(line, "record ", true)
			if err != nil {
				return nil, err
			}
			p.stub.Composites = append(p.stub.Composites, c)
		case strings.HasPrefix(line, "mapping ") && strings.HasSuffix(line, ":"):
			m, err := p.parseMapping(line)
			if err != nil {
				return nil, err
			}
			p.stub.Mappings = append(p.stub.Mappings, m)
		case hasBlockKeyword(line):
			fs, err := p.parseFunctionBlock(line)
			if err != nil {
				return nil, err
			}
			if fs != nil {
				p.stub.Functions = append(p.stub.Functions, fs)
			}
		default:
			return nil, fmt.Errorf("disasm: unrecognized top-level line %q", line)
		}
	}
	return p.stub, nil
}

// blockBody returns every line more indented than the block header just
// consumed, advancing past them.
func (p *disassembler) blockBody() []string {
	var body []string
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		if strings.TrimSpace(raw) == "" {
			p.pos++
			continue
		}
		if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
			break
		}
		body = append(body, strings.TrimSpace(raw))
		p.pos++
	}
	return body
}

func (p *disassembler) parseComposite(header, prefix string, isRecord bool) (*ast.Composite, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(header, prefix), ":")
	p.pos++
	body := p.blockBody()

	c := &ast.Composite{
		Base: ast.Base{NID: p.nb.NextID()}, Name: session.Intern(name), IsRecord: isRecord,
	}
	for _, line := range body {
		line = strings.TrimSuffix(line, ";")
		parts := strings.SplitN(line, " as ", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("disasm: malformed member line %q in struct/record %s", line, name)
		}
		typ, err := parseType(parts[1])
		if err != nil {
			return nil, err
		}
		mode := ast.ModeNone
		if len(parts) == 3 {
			mode = parseModeText(parts[2])
		}
		c.Members = append(c.Members, &ast.Member{
			Base: ast.Base{NID: p.nb.NextID()}, Name: session.Intern(parts[0]), Type: typ, Mode: mode,
		})
	}
	return c, nil
}

func (p *disassembler) parseMapping(header string) (*ast.Mapping, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(header, "mapping "), ":")
	p.pos++
	body := p.blockBody()

	m := &ast.Mapping{Base: ast.Base{NID: p.nb.NextID()}, Name: session.Intern(name), Program: p.stub.Program}
	for _, line := range body {
		line = strings.TrimSuffix(line, ";")
		switch {
		case strings.HasPrefix(line, "key as "):
			t, err := parseType(strings.TrimPrefix(line, "key as "))
			if err != nil {
				return nil, err
			}
			m.Key = t
		case strings.HasPrefix(line, "value as "):
			t, err := parseType(strings.TrimPrefix(line, "value as "))
			if err != nil {
				return nil, err
			}
			m.Value = t
		}
	}
	return m, nil
}

func hasBlockKeyword(line string) bool {
	if line == "constructor:" {
		return true
	}
	for _, kw := range []string{"function ", "transition ", "finalize ", "constructor "} {
		if strings.HasPrefix(line, kw) && strings.HasSuffix(line, ":") {
			return true
		}
	}
	return false
}

// parseFunctionBlock parses one function/transition/finalize/constructor
// block. finalize blocks are scanned past (their content is already
// implied by the paired transition's synthesized finalizer Location, per
// internal/passes/symcreate.insertStub) and never produce a FunctionStub
// of their own; an external caller never targets a finalizer directly.
func (p *disassembler) parseFunctionBlock(header string) (*ast.FunctionStub, error) {
	kw, rest, _ := strings.Cut(header, " ")
	kw = strings.TrimSuffix(kw, ":")
	name := strings.TrimSuffix(rest, ":")
	if kw == "constructor" && name == "" {
		name = "constructor"
	}
	p.pos++
	body := p.blockBody()

	if kw == "finalize" {
		return nil, nil
	}

	fs := &ast.FunctionStub{Name: session.Intern(name)}
	switch kw {
	case "constructor":
		fs.Variant = ast.VariantConstructor
	default:
		// AVM bytecode has no `transition` keyword of its own (internal/
		// codegen.functionKeyword emits every externally callable entry
		// point as `function`, spec.md §8 Scenario 1) and inline functions
		// are never deployed as standalone blocks — they are fully
		// inlined before a program reaches bytecode. So a bare `function`
		// header in deployed bytecode is always a transition; the async
		// finalize trailer below upgrades it to VariantAsyncTransition
		// when present.
		fs.Variant = ast.VariantTransition
	}

	for _, line := range body {
		line = strings.TrimSuffix(line, ";")
		switch {
		case strings.HasPrefix(line, "input "):
			param, err := parseParam(strings.TrimPrefix(line, "input "), fs.Variant)
			if err != nil {
				return nil, err
			}
			fs.Inputs = append(fs.Inputs, param)
		case strings.HasPrefix(line, "output "):
			param, err := parseParam(strings.TrimPrefix(line, "output "), fs.Variant)
			if err != nil {
				return nil, err
			}
			fs.Outputs = append(fs.Outputs, param)
		case strings.HasPrefix(line, "async finalize ") && strings.Contains(line, " into r"):
			fs.Variant = ast.VariantAsyncTransition
			finalizerName, ok := parseAsyncFinalizerName(line)
			if !ok {
				return nil, fmt.Errorf("disasm: malformed async finalize trailer %q", line)
			}
			fs.Finalizer = &ast.Location{
				Program: p.stub.Program,
				Path:    []session.Symbol{session.Intern(finalizerName)},
			}
		}
	}
	return fs, nil
}

// parseAsyncFinalizerName extracts "finalize_transfer" out of
// "async finalize finalize_transfer into r3".
func parseAsyncFinalizerName(line string) (string, bool) {
	rest := strings.TrimPrefix(line, "async finalize ")
	idx := strings.Index(rest, " into r")
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:idx]), true
}

// parseParam parses "r0 as u32.private" (or "r0 as u32" with no mode
// suffix) into an *ast.Param. The register name itself is discarded:
// disasm only needs the parameter's position, type, and mode to
// reconstruct a callable signature.
func parseParam(text string, variant ast.FunctionVariant) (*ast.Param, error) {
	parts := strings.SplitN(text, " as ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("disasm: malformed input/output line %q", text)
	}
	typeText := parts[1]
	mode := ast.ModeNone
	if dot := strings.LastIndex(typeText, "."); dot >= 0 && isModeSuffix(typeText[dot+1:]) {
		mode = parseModeText(typeText[dot+1:])
		typeText = typeText[:dot]
	}
	typ, err := parseType(typeText)
	if err != nil {
		return nil, err
	}
	return &ast.Param{Type: typ, Mode: mode}, nil
}

func isModeSuffix(s string) bool {
	switch s {
	case "public", "private", "constant", "owner", "record":
		return true
	default:
		return false
	}
}

// parseModeText covers both a composite member's mode suffix (`owner`,
// written by internal/codegen's modeAVMText) and a function parameter's
// mode suffix (`record`, written by internal/codegen's paramModeText) —
// both denote ast.ModeRecord, just spelled differently depending on
// which emitter produced them.
func parseModeText(s string) ast.Mode {
	switch strings.TrimSpace(s) {
	case "public":
		return ast.ModePublic
	case "private":
		return ast.ModePrivate
	case "constant":
		return ast.ModeConstant
	case "owner", "record":
		return ast.ModeRecord
	default:
		return ast.ModeNone
	}
}

// parseType re-parses one of internal/ast's TypeExpr.String() forms:
// a bare name ("u32", "Token"), a program-qualified name
// ("other.aleo/Token"), a sized or unsized array ("[u32; 3]" /
// "[u32]"), a tuple ("(u32, bool)"), a mapping type
// ("mapping(u32 => bool)"), a Future type ("Future<u32, bool>"), or the
// unit type ("()"). It has no NodeBuilder dependency on positions in the
// original source, since a disassembled type carries no span.
func parseType(text string) (ast.TypeExpr, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "()":
		return &ast.UnitType{}, nil
	case strings.HasPrefix(text, "mapping(") && strings.HasSuffix(text, ")"):
		inner := text[len("mapping(") : len(text)-1]
		k, v, ok := splitTop(inner, "=>")
		if !ok {
			return nil, fmt.Errorf("disasm: malformed mapping type %q", text)
		}
		kt, err := parseType(k)
		if err != nil {
			return nil, err
		}
		vt, err := parseType(v)
		if err != nil {
			return nil, err
		}
		return &ast.MappingType{Key: kt, Value: vt}, nil
	case strings.HasPrefix(text, "Future<") && strings.HasSuffix(text, ">"):
		inner := text[len("Future<") : len(text)-1]
		var inputs []ast.TypeExpr
		for _, part := range splitTopComma(inner) {
			t, err := parseType(part)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, t)
		}
		return &ast.FutureType{Inputs: inputs}, nil
	case strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"):
		inner := text[1 : len(text)-1]
		if elem, n, ok := splitTop(inner, ";"); ok {
			et, err := parseType(elem)
			if err != nil {
				return nil, err
			}
			length, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, fmt.Errorf("disasm: malformed array length in %q: %w", text, err)
			}
			return &ast.ArrayType{Element: et, Len: &ast.Literal{Kind: ast.LitInt, Value: fmt.Sprint(length)}}, nil
		}
		et, err := parseType(inner)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Element: et}, nil
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")"):
		inner := text[1 : len(text)-1]
		var elems []ast.TypeExpr
		for _, part := range splitTopComma(inner) {
			t, err := parseType(part)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return &ast.TupleType{Elements: elems}, nil
	case strings.Contains(text, "/"):
		prog, name, _ := strings.Cut(text, "/")
		progSym := session.Intern(prog)
		return &ast.NamedType{Name: session.Intern(name), Program: &progSym}, nil
	default:
		return &ast.NamedType{Name: session.Intern(text)}, nil
	}
}

// splitTop splits s on the first top-level (bracket-depth-0) occurrence
// of sep, so nested array/tuple/mapping types in a mapping's key/value or
// an array's element don't confuse the split.
func splitTop(s, sep string) (left, right string, ok bool) {
	depth := 0
	for i := 0; i+len(sep) <= len(s); i++ {
		switch s[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		}
		if depth == 0 && s[i:i+len(sep)] == sep {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}
	return "", "", false
}

// splitTopComma splits a comma-separated list at bracket-depth 0, for
// tuple elements and Future type parameters.
func splitTopComma(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

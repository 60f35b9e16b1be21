package disasm

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

const tokenProgramAsm = `program token.aleo;
record Token:
    owner as address as owner;
    amount as u64 as private;
mapping balances:
    key as address;
    value as u64;
function mint:
    input r0 as address.private;
    input r1 as u64.private;
    cast r0 r1 into r2 as Token.record;
    output r2 as Token.record;
function transfer_public:
    input r0 as address.public;
    input r1 as u64.public;
    output r2 as Future;
    async finalize finalize_transfer_public into r3;
finalize finalize_transfer_public:
    input r0 as address.public;
    input r1 as u64.public;
    sub r0 r1 into r2;
`

func TestDisassemble_RoundTripsCodegenShape(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		stub, err := Disassemble(tokenProgramAsm, nb)
		if err != nil {
			t.Fatalf("Disassemble failed: %v", err)
		}

		if got := session.Resolve(stub.Program); got != "token.aleo" {
			t.Fatalf("Program = %q, want token.aleo", got)
		}

		if len(stub.Composites) != 1 {
			t.Fatalf("expected 1 composite, got %d", len(stub.Composites))
		}
		rec := stub.Composites[0]
		if !rec.IsRecord || session.Resolve(rec.Name) != "Token" {
			t.Fatalf("expected record Token, got %+v", rec)
		}
		if len(rec.Members) != 2 || rec.Members[0].Mode != ast.ModeRecord {
			t.Fatalf("expected owner member first, got %+v", rec.Members)
		}

		if len(stub.Mappings) != 1 || session.Resolve(stub.Mappings[0].Name) != "balances" {
			t.Fatalf("expected mapping balances, got %+v", stub.Mappings)
		}
		if stub.Mappings[0].Key.String() != "address" || stub.Mappings[0].Value.String() != "u64" {
			t.Fatalf("mapping key/value mismatch: %+v", stub.Mappings[0])
		}

		if len(stub.Functions) != 2 {
			t.Fatalf("expected 2 function stubs (finalize block excluded), got %d: %+v", len(stub.Functions), stub.Functions)
		}

		var mint, xfer *ast.FunctionStub
		for _, fs := range stub.Functions {
			switch session.Resolve(fs.Name) {
			case "mint":
				mint = fs
			case "transfer_public":
				xfer = fs
			}
		}
		if mint == nil || xfer == nil {
			t.Fatalf("expected both mint and transfer_public stubs, got %+v", stub.Functions)
		}

		if mint.Variant != ast.VariantTransition {
			t.Fatalf("mint variant = %v, want VariantTransition", mint.Variant)
		}
		if len(mint.Inputs) != 2 || mint.Inputs[0].Type.String() != "address" || mint.Inputs[1].Type.String() != "u64" {
			t.Fatalf("mint inputs mismatch: %+v", mint.Inputs)
		}
		if len(mint.Outputs) != 1 || mint.Outputs[0].Type.String() != "Token" || mint.Outputs[0].Mode != ast.ModeRecord {
			t.Fatalf("mint output mismatch: %+v", mint.Outputs)
		}

		if xfer.Variant != ast.VariantAsyncTransition {
			t.Fatalf("transfer_public variant = %v, want VariantAsyncTransition", xfer.Variant)
		}
		if xfer.Finalizer == nil || session.Resolve(xfer.Finalizer.Path[0]) != "finalize_transfer_public" {
			t.Fatalf("transfer_public finalizer = %+v, want finalize_transfer_public", xfer.Finalizer)
		}
		if xfer.Inputs[0].Mode != ast.ModePublic {
			t.Fatalf("transfer_public input mode = %v, want ModePublic", xfer.Inputs[0].Mode)
		}
	})
}

func TestDisassemble_ParsesArrayTupleAndFutureTypes(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		const asm = `program generics.aleo;
function combine:
    input r0 as [u32; 3].private;
    input r1 as (u32, bool).private;
    output r2 as Future<u32, bool>;
`
		nb := ast.NewNodeBuilder()
		stub, err := Disassemble(asm, nb)
		if err != nil {
			t.Fatalf("Disassemble failed: %v", err)
		}
		if len(stub.Functions) != 1 {
			t.Fatalf("expected 1 function, got %d", len(stub.Functions))
		}
		fn := stub.Functions[0]
		if got := fn.Inputs[0].Type.String(); got != "[u32; 3]" {
			t.Fatalf("array type round-trip = %q, want [u32; 3]", got)
		}
		if got := fn.Inputs[1].Type.String(); got != "(u32, bool)" {
			t.Fatalf("tuple type round-trip = %q, want (u32, bool)", got)
		}
		if got := fn.Outputs[0].Type.String(); got != "Future<u32, bool>" {
			t.Fatalf("future type round-trip = %q, want Future<u32, bool>", got)
		}
	})
}

func TestDisassemble_QualifiedNamedType(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		const asm = `program consumer.aleo;
function use_token:
    input r0 as other.aleo/Token.private;
    output r1 as u64;
`
		nb := ast.NewNodeBuilder()
		stub, err := Disassemble(asm, nb)
		if err != nil {
			t.Fatalf("Disassemble failed: %v", err)
		}
		named, ok := stub.Functions[0].Inputs[0].Type.(*ast.NamedType)
		if !ok {
			t.Fatalf("expected *ast.NamedType, got %T", stub.Functions[0].Inputs[0].Type)
		}
		if named.Program == nil || session.Resolve(*named.Program) != "other.aleo" {
			t.Fatalf("expected Program=other.aleo, got %+v", named.Program)
		}
		if session.Resolve(named.Name) != "Token" {
			t.Fatalf("expected Name=Token, got %q", session.Resolve(named.Name))
		}
	})
}

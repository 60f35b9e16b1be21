package network

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

const tokenAsm = `program token.aleo;
record Token:
    owner as address as owner;
    amount as u64 as private;
transition mint:
    input r0 as address.private;
    input r1 as u64.private;
    output r2 as Token.record;
`

func TestMapFetcher_FetchDisassemblesRegisteredProgram(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		f := NewMapFetcher(nb, map[string]string{"token.aleo": tokenAsm})

		stub, err := f.Fetch(session.Intern("token.aleo"))
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if session.Resolve(stub.Program) != "token.aleo" {
			t.Fatalf("Program = %q, want token.aleo", session.Resolve(stub.Program))
		}
		if len(stub.Functions) != 1 || session.Resolve(stub.Functions[0].Name) != "mint" {
			t.Fatalf("expected a single mint stub, got %+v", stub.Functions)
		}
	})
}

func TestMapFetcher_FetchUnknownProgramErrors(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		nb := ast.NewNodeBuilder()
		f := NewMapFetcher(nb, map[string]string{})
		if _, err := f.Fetch(session.Intern("missing.aleo")); err == nil {
			t.Fatalf("expected an error for an unregistered program")
		}
	})
}

func TestUnavailableFetcher_AlwaysErrors(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		if _, err := (UnavailableFetcher{}).Fetch(session.Intern("any.aleo")); err == nil {
			t.Fatalf("expected UnavailableFetcher.Fetch to always error")
		}
	})
}

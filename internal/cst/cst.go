// Package cst builds Leo's lossless concrete syntax tree: a tree over the
// full (trivia-included) token stream that groups matching delimiters, so
// a formatter or linter can walk and reprint the exact source text,
// including whitespace and comments (spec.md §4.B). The semantic AST
// (internal/ast) is built separately, directly from the token stream, via
// ToMain/ToModule.
package cst

import "github.com/ProvableHQ/leo-sub007/internal/lexer"

// Node is either a leaf Token or a Tree grouping a delimiter-matched run
// of child Nodes (including the delimiters themselves as leaves, so the
// tree is lossless).
type Node interface {
	cstNode()
	// Text reconstructs the exact source text this node covers.
	Text() string
}

// Leaf wraps a single token (including trivia).
type Leaf struct {
	Tok lexer.Token
}

func (l *Leaf) cstNode()        {}
func (l *Leaf) Text() string    { return l.Tok.Literal }

// Tree groups a delimiter-balanced run of child nodes. Kind is the
// delimiter token type that opened the group (lexer.LPAREN, LBRACE,
// LBRACKET), or -1 for the synthetic top-level File tree.
type Tree struct {
	Kind     lexer.TokenType
	Children []Node
}

func (t *Tree) cstNode() {}
func (t *Tree) Text() string {
	s := ""
	for _, c := range t.Children {
		s += c.Text()
	}
	return s
}

var openers = map[lexer.TokenType]lexer.TokenType{
	lexer.LPAREN:   lexer.RPAREN,
	lexer.LBRACE:   lexer.RBRACE,
	lexer.LBRACKET: lexer.RBRACKET,
}

// Build constructs the lossless tree from a full (trivia-included) token
// stream, terminated by EOF.
func Build(toks []lexer.Token) *Tree {
	root := &Tree{Kind: -1}
	pos := 0
	buildInto(toks, &pos, root)
	return root
}

func buildInto(toks []lexer.Token, pos *int, into *Tree) {
	for *pos < len(toks) {
		t := toks[*pos]
		if t.Type == lexer.EOF {
			into.Children = append(into.Children, &Leaf{Tok: t})
			*pos++
			return
		}
		if closer, ok := openers[t.Type]; ok {
			*pos++
			sub := &Tree{Kind: t.Type}
			sub.Children = append(sub.Children, &Leaf{Tok: t})
			buildGroup(toks, pos, sub, closer)
			into.Children = append(into.Children, sub)
			continue
		}
		if t.Type == lexer.RPAREN || t.Type == lexer.RBRACE || t.Type == lexer.RBRACKET {
			// Unbalanced closer at this level: it is absorbed as a leaf and
			// the scan continues, so the tree stays lossless.
			into.Children = append(into.Children, &Leaf{Tok: t})
			*pos++
			continue
		}
		into.Children = append(into.Children, &Leaf{Tok: t})
		*pos++
	}
}

func buildGroup(toks []lexer.Token, pos *int, into *Tree, closer lexer.TokenType) {
	for *pos < len(toks) {
		t := toks[*pos]
		if t.Type == lexer.EOF {
			return // unterminated group; parser will diagnose
		}
		if t.Type == closer {
			into.Children = append(into.Children, &Leaf{Tok: t})
			*pos++
			return
		}
		if open, ok := openers[t.Type]; ok {
			*pos++
			sub := &Tree{Kind: t.Type}
			sub.Children = append(sub.Children, &Leaf{Tok: t})
			buildGroup(toks, pos, sub, open2closer(open))
			into.Children = append(into.Children, sub)
			continue
		}
		into.Children = append(into.Children, &Leaf{Tok: t})
		*pos++
	}
}

func open2closer(open lexer.TokenType) lexer.TokenType { return openers[open] }

// Tokens flattens the tree back into its original token sequence
// (trivia included) — the identity round-trip the formatter relies on.
func Tokens(n Node) []lexer.Token {
	var out []lexer.Token
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Leaf:
			out = append(out, v.Tok)
		case *Tree:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// ToMain strips trivia from the tree's token sequence, yielding the token
// stream the semantic AST builder (internal/parser) consumes for a main
// program file.
func ToMain(root *Tree) []lexer.Token {
	return lexer.StripTrivia(Tokens(root))
}

// ToModule is the same conversion for a module file; module files and main
// files share one grammar, so this is currently an alias of ToMain kept
// distinct so a future module-only restriction (e.g. disallowing a nested
// `program` declaration) has a seam to attach to.
func ToModule(root *Tree) []lexer.Token {
	return ToMain(root)
}

package lexer

import "fmt"

// TokenType enumerates every lexeme Leo source can produce, including
// whitespace and comment trivia so the lossless CST (internal/cst) can
// round-trip a file byte-for-byte.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT_LINE
	COMMENT_BLOCK
	WHITESPACE

	IDENT     // plain identifier: foo
	PATH      // a::b::c
	PROGRAM_ID // a.aleo
	LOCATOR   // a.aleo/b

	INT
	FLOAT_UNUSED // reserved; Leo has no float literals, kept for table symmetry
	STRING
	CHAR
	ADDRESS

	// Keywords
	ADDRESS_TY
	AS
	ASSERT
	ASSERT_EQ
	ASSERT_NEQ
	ASYNC
	BOOL
	CHAR_TY
	CONSOLE
	CONST
	CONSTRUCTOR
	ELSE
	FIELD
	FINALIZE
	FOR
	FUNCTION
	GROUP
	IF
	IMPORT
	IN
	INLINE
	LET
	LOG
	MAPPING
	PRIVATE
	PROGRAM
	PUBLIC
	RECORD
	RETURN
	SCALAR
	SCRIPT
	SELF
	SIGNATURE
	STRING_TY
	STRUCT
	TRANSITION
	TRUE
	FALSE

	I8
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	STARSTAR
	EQ
	NEQ
	LT
	GT
	LTE
	GTE
	AMPAMP
	PIPEPIPE
	AMP
	PIPE
	CARET
	SHL
	SHR
	BANG
	QUESTION
	ASSIGN
	COLON
	DCOLON
	ARROW
	FATARROW

	// Delimiters
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	DOT
	DOTDOT
	DOTDOTEQ
	SEMICOLON
	AT
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT_LINE: "COMMENT_LINE", COMMENT_BLOCK: "COMMENT_BLOCK",
	WHITESPACE: "WHITESPACE", IDENT: "IDENT", PATH: "PATH", PROGRAM_ID: "PROGRAM_ID", LOCATOR: "LOCATOR",
	INT: "INT", STRING: "STRING", CHAR: "CHAR", ADDRESS: "ADDRESS",
	ADDRESS_TY: "address", AS: "as", ASSERT: "assert", ASSERT_EQ: "assert_eq", ASSERT_NEQ: "assert_neq",
	ASYNC: "async", BOOL: "bool", CHAR_TY: "char", CONSOLE: "console", CONST: "const",
	CONSTRUCTOR: "constructor", ELSE: "else", FIELD: "field", FINALIZE: "finalize", FOR: "for",
	FUNCTION: "function", GROUP: "group", IF: "if", IMPORT: "import", IN: "in", INLINE: "inline",
	LET: "let", LOG: "log", MAPPING: "mapping", PRIVATE: "private", PROGRAM: "program", PUBLIC: "public",
	RECORD: "record", RETURN: "return", SCALAR: "scalar", SCRIPT: "script", SELF: "self",
	SIGNATURE: "signature", STRING_TY: "string", STRUCT: "struct", TRANSITION: "transition",
	TRUE: "true", FALSE: "false",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", STARSTAR: "**",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	AMPAMP: "&&", PIPEPIPE: "||", AMP: "&", PIPE: "|", CARET: "^", SHL: "<<", SHR: ">>",
	BANG: "!", QUESTION: "?", ASSIGN: "=", COLON: ":", DCOLON: "::", ARROW: "->", FATARROW: "=>",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", DOT: ".", DOTDOT: "..", DOTDOTEQ: "..=", SEMICOLON: ";", AT: "@",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

var keywords = map[string]TokenType{
	"address": ADDRESS_TY, "as": AS, "assert": ASSERT, "assert_eq": ASSERT_EQ, "assert_neq": ASSERT_NEQ,
	"async": ASYNC, "bool": BOOL, "char": CHAR_TY, "console": CONSOLE, "const": CONST,
	"constructor": CONSTRUCTOR, "else": ELSE, "field": FIELD, "finalize": FINALIZE, "for": FOR,
	"function": FUNCTION, "group": GROUP, "if": IF, "import": IMPORT, "in": IN, "inline": INLINE,
	"let": LET, "log": LOG, "mapping": MAPPING, "private": PRIVATE, "program": PROGRAM, "public": PUBLIC,
	"record": RECORD, "return": RETURN, "scalar": SCALAR, "script": SCRIPT, "Self": SELF, "self": SELF,
	"signature": SIGNATURE, "string": STRING_TY, "struct": STRUCT, "transition": TRANSITION,
	"true": TRUE, "false": FALSE,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128,
}

// LookupIdent classifies a plain identifier-shaped lexeme as a keyword or
// IDENT. Finer classification into PATH/PROGRAM_ID/LOCATOR happens in the
// scanner, which sees the surrounding `::`/`.`/`.aleo/` shape that a bare
// identifier lookup cannot (spec.md §4.B).
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether t is a reserved word (used by module-name
// validation: a module key colliding with a keyword is a diagnostic per
// spec.md §6.1).
func IsKeyword(t TokenType) bool {
	_, ok := tokenNames[t]
	return ok && t >= ADDRESS_TY && t <= FALSE
}

// Token is one lexeme: its type, literal text, and byte span (rebased by
// the owning SourceFile's AbsoluteStart so it indexes directly into the
// session SourceMap).
type Token struct {
	Type    TokenType
	Literal string
	Lo, Hi  uint32
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %d..%d}", t.Type, t.Literal, t.Lo, t.Hi)
}

// IsTrivia reports whether t is whitespace or a comment — retained by the
// lossless CST, skipped by the semantic-AST builder.
func (t Token) IsTrivia() bool {
	return t.Type == WHITESPACE || t.Type == COMMENT_LINE || t.Type == COMMENT_BLOCK
}

package diag

// Error code constants, one family per diagnostic Kind, mirroring the
// teacher's PAR###/MOD###/LDR###/TC###/... registry in internal/errors
// (codes.go) but re-keyed to Leo's seven-kind taxonomy (spec.md §7).
const (
	// Lex/Parse (PAR###) — never recoverable.
	ParUnexpectedToken   = "PAR001"
	ParUnexpectedEOF     = "PAR002"
	ParUnterminatedGroup = "PAR003"
	ParKeywordAsModule   = "PAR004"
	ParInvalidLiteral    = "PAR005"

	// Symbol/Path (SYM###) — recoverable.
	SymUnknownVariable  = "SYM001"
	SymUnknownFunction  = "SYM002"
	SymDuplicateDef     = "SYM003"
	SymShadowedStruct   = "SYM004"
	SymConstAssignment  = "SYM005"

	// Type (TYP###) — recoverable.
	TypeMismatch       = "TYP001"
	TypeIllegalCast    = "TYP002"
	TypeWrongArity     = "TYP003"
	TypeNonIntegerLoop = "TYP004"
	TypeMissingReturn  = "TYP005"
	TypeSelfOutsideCtx = "TYP006"
	TypeNotCallable    = "TYP007"
	TypeConstMutation  = "TYP008"

	// Static-analysis (STA###) — warning unless noted otherwise.
	StaFutureUnorderedAwait = "STA001" // future_not_awaited_in_order
	StaFutureNeverAwaited   = "STA002" // error
	StaFutureMisplaced      = "STA003" // error
	StaAsyncCallNotSimple   = "STA004" // error

	// Flow (FLW###) — never recoverable.
	FlowMissingReturn    = "FLW001"
	FlowOverflow         = "FLW002"
	FlowCallCycle        = "FLW003"
	FlowLoopBoundNotConst = "FLW004"
	FlowIndexNotLiteral  = "FLW005"
	FlowFinalizerCost    = "FLW006" // warning: finalizer body exceeds Config.FinalizerCostWarnLimit

	// Internal (INT###) — never recoverable; indicates a compiler bug.
	IntTypeTableMiss  = "INT001"
	IntInvariantBroke = "INT002"
	IntBadAssembly    = "INT003"

	// External (EXT###) — never recoverable.
	ExtImportUnresolved  = "EXT001"
	ExtDisassemblyFailed = "EXT002"
)

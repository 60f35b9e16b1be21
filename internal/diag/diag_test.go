package diag_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo-sub007/internal/diag"
)

func TestHandler_HadErrorsOnlyCountsErrorSeverity(t *testing.T) {
	h := diag.NewHandler(diag.ModeBuffered, nil)
	h.Emit(&diag.Report{Code: "LEO-STA-001", Kind: diag.KindStaticAnalysis, Severity: diag.SeverityWarning, Message: "just a warning"})
	assert.False(t, h.HadErrors(), "a warning alone should not count as HadErrors")

	h.Emit(&diag.Report{Code: diag.FlowOverflow, Kind: diag.KindFlow, Severity: diag.SeverityError, Message: "overflow"})
	assert.True(t, h.HadErrors(), "expected HadErrors to be true after an error report")
}

func TestHandler_ErrorsAndWarningsPartitionReports(t *testing.T) {
	h := diag.NewHandler(diag.ModeBuffered, nil)
	h.Emit(&diag.Report{Code: "W1", Severity: diag.SeverityWarning})
	h.Emit(&diag.Report{Code: "E1", Severity: diag.SeverityError})
	h.Emit(&diag.Report{Code: "E2", Severity: diag.SeverityError})

	assert.Len(t, h.Errors(), 2)
	assert.Len(t, h.Warnings(), 1)
	assert.Len(t, h.Reports(), 3)
}

func TestHandler_EmitDefaultsSchema(t *testing.T) {
	h := diag.NewHandler(diag.ModeBuffered, nil)
	h.Emit(&diag.Report{Code: "E1", Severity: diag.SeverityError})
	reports := h.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "leo.diag/v1", reports[0].Schema)
}

func TestHandler_LastErrorCodeTracksMostRecentError(t *testing.T) {
	h := diag.NewHandler(diag.ModeBuffered, nil)
	h.Emit(&diag.Report{Code: "W1", Severity: diag.SeverityWarning})
	h.Emit(&diag.Report{Code: diag.TypeMismatch, Severity: diag.SeverityError})
	h.Emit(&diag.Report{Code: "W2", Severity: diag.SeverityWarning})
	assert.Equal(t, diag.TypeMismatch, h.LastErrorCode())
}

func TestHandler_Drain(t *testing.T) {
	h := diag.NewHandler(diag.ModeBuffered, nil)
	h.Emit(&diag.Report{Code: "E1", Severity: diag.SeverityError})

	drained := h.Drain()
	assert.Len(t, drained, 1)
	assert.False(t, h.HadErrors(), "expected the buffer to be empty after Drain")
}

func TestHandler_StderrModeRendersToWriter(t *testing.T) {
	var buf bytes.Buffer
	h := diag.NewHandler(diag.ModeStderr, &buf)
	h.Emit(&diag.Report{Code: diag.ParUnexpectedToken, Severity: diag.SeverityError, Message: "bad token"})

	out := buf.String()
	assert.Contains(t, out, diag.ParUnexpectedToken)
	assert.Contains(t, out, "bad token")
}

func TestReport_WrapAndAsReportRoundTrip(t *testing.T) {
	r := &diag.Report{Code: diag.SymUnknownVariable, Severity: diag.SeverityError, Message: "undefined symbol"}
	err := diag.WrapReport(r)

	got, ok := diag.AsReport(err)
	require.True(t, ok, "expected AsReport to recover the original report")
	assert.Same(t, r, got)

	assert.True(t, errors.Is(err, err), "a ReportError should satisfy basic errors.Is identity")
}

func TestReport_AsReportFailsForForeignErrors(t *testing.T) {
	_, ok := diag.AsReport(errors.New("not a report"))
	assert.False(t, ok, "expected AsReport to fail for an error that isn't a ReportError")
}

func TestKind_RecoverablePolicy(t *testing.T) {
	recoverable := []diag.Kind{diag.KindSymbolPath, diag.KindType, diag.KindStaticAnalysis}
	for _, k := range recoverable {
		assert.True(t, k.Recoverable(), "%s should be recoverable", k)
	}
	nonRecoverable := []diag.Kind{diag.KindLexParse, diag.KindFlow, diag.KindInternal, diag.KindExternal}
	for _, k := range nonRecoverable {
		assert.False(t, k.Recoverable(), "%s should not be recoverable", k)
	}
}

func TestReport_StringIncludesLocationAndCode(t *testing.T) {
	r := &diag.Report{
		Code: diag.FlowOverflow, Severity: diag.SeverityError, Message: "value overflows",
		Span: &diag.SpanInfo{File: "a.leo", StartLine: 3, StartCol: 5},
	}
	got := r.String()
	assert.Contains(t, got, "a.leo:3:5")
	assert.Contains(t, got, diag.FlowOverflow)
	assert.Contains(t, got, "value overflows")
}

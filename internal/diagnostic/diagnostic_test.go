package diagnostic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryRouteOverlap,
		File:     "src/widgets.controller.ts",
		Line:     10,
		Column:   5,
		Message:  "Partial route overlap: GET widgets/{key} may be shadowed by GET widgets/{id}",
		Hint:     "declare the more specific route first",
	}

	s := d.String()
	assert.Contains(t, s, "src/widgets.controller.ts:10:5 - ")
	assert.Contains(t, s, "warning: ")
	assert.Contains(t, s, "[route-overlap]")
	assert.Contains(t, s, "\n  hint: declare the more specific route first")
}

func TestDiagnostic_LocationOmitsUnknownParts(t *testing.T) {
	assert.Equal(t, "", Diagnostic{}.Location())
	assert.Equal(t, "a.ts", Diagnostic{File: "a.ts"}.Location())
	assert.Equal(t, "a.ts:3", Diagnostic{File: "a.ts", Line: 3}.Location())
}

func TestCollector_WarnAndError(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryConstraintInvalid, "test.ts", 5, 1, "invalid constraint")
	c.Error(CategoryConfigInvalid, "", 0, "missing config field")

	assert.Equal(t, 1, c.WarningCount())
	assert.Equal(t, 1, c.ErrorCount())
	assert.True(t, c.HasErrors())
}

func TestCollector_StrictMode(t *testing.T) {
	c := NewCollector(true, false)
	c.Warn(CategoryTypeUnsupported, "test.ts", 1, 1, "unsupported type")

	assert.Equal(t, 1, c.ErrorCount(), "strict mode turns warnings into errors")
	assert.Equal(t, 0, c.WarningCount())
}

func TestCollector_QuietMode(t *testing.T) {
	c := NewCollector(false, true)
	c.Warn(CategoryTypeUnsupported, "test.ts", 1, 1, "unsupported type")
	c.Info(CategorySourceParse, "test.ts", 1, "parsed")
	c.Error(CategoryConfigInvalid, "", 0, "real error")

	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, SeverityError, c.Diagnostics()[0].Severity)
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(false, false)
	assert.Equal(t, "no issues", c.Summary())

	c.Warn(CategoryRouteOverlap, "a.ts", 1, 1, "warn1")
	c.Warn(CategoryRouteOverlap, "b.ts", 2, 1, "warn2")
	c.Error(CategoryConfigInvalid, "", 0, "err1")
	assert.Equal(t, "1 error(s), 2 warning(s)", c.Summary())
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Warn(CategoryTypeUnsupported, "", 0, 0, "test")
	c.Error(CategoryConfigInvalid, "", 0, "test")
	c.Reset()
	assert.False(t, c.HasErrors())
	assert.Empty(t, c.Summary())
	assert.Empty(t, c.FormatAll())
}

func TestCollector_ByCategoryAndReset(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryRouteOverlap, "a.ts", 1, 1, "overlap")
	c.Warn(CategoryKeyof, "a.ts", 2, 1, "keyof")

	assert.Len(t, c.ByCategory(CategoryRouteOverlap), 1)
	c.Reset()
	assert.Empty(t, c.Diagnostics())
}

func TestCollector_MirrorsToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewCollector(false, false).WithLogger(zap.New(core))

	c.Warn(CategoryRouteOverlap, "widgets.ts", 7, 3, "Full route overlap")

	entries := logs.FilterMessage("Full route overlap").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "route-overlap", fields["category"])
	assert.Equal(t, "widgets.ts", fields["file"])
	assert.EqualValues(t, 7, fields["line"])
}

func TestCollector_WritePlain(t *testing.T) {
	c := NewCollector(false, false)
	c.WarnWithHint(CategoryTypeUnsupported, "test.ts", 5, 2, "Map not supported", "use Record instead")

	var buf bytes.Buffer
	c.Write(&buf, false)
	assert.Equal(t, "test.ts:5:2 - warning: [type-unsupported] Map not supported\n  hint: use Record instead\n", buf.String())
}

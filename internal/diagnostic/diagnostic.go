// Package diagnostic is the non-fatal diagnostic stream of an analysis run.
// Diagnostics are collected for the caller's summary and mirrored to a zap
// logger as they arrive.
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategoryRouteOverlap      Category = "route-overlap"
	CategoryTypeUnsupported   Category = "type-unsupported"
	CategoryKeyof             Category = "keyof-nonliteral"
	CategoryConstraintInvalid Category = "constraint-invalid"
	CategoryMissingReturnType Category = "missing-return-type"
	CategorySourceParse       Category = "source-parse"
	CategoryConfigInvalid     Category = "config-invalid"
)

// Diagnostic is one structured message.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string
	Line     int // 1-based, 0 = unknown
	Column   int // 1-based, 0 = unknown
	Message  string
	Hint     string
}

// Location renders file:line:col, omitting unknown parts.
func (d Diagnostic) Location() string {
	if d.File == "" {
		return ""
	}
	loc := d.File
	if d.Line > 0 {
		loc += fmt.Sprintf(":%d", d.Line)
		if d.Column > 0 {
			loc += fmt.Sprintf(":%d", d.Column)
		}
	}
	return loc
}

// String formats the diagnostic as `file:line:col - severity: [category] message`.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if loc := d.Location(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(" - ")
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Category != "" {
		fmt.Fprintf(&sb, "[%s] ", d.Category)
	}
	sb.WriteString(d.Message)
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// Collector collects diagnostics during analysis. A nil *Collector
// discards everything.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // warnings become errors
	quiet       bool // warnings and infos are dropped
	logger      *zap.Logger
}

// NewCollector creates a collector that logs nowhere.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{strict: strict, quiet: quiet, logger: zap.NewNop()}
}

// WithLogger mirrors every accepted diagnostic to l.
func (c *Collector) WithLogger(l *zap.Logger) *Collector {
	if l != nil {
		c.logger = l
	}
	return c
}

// Report adds d, applying the strict and quiet policies.
func (c *Collector) Report(d Diagnostic) {
	if c == nil {
		return
	}
	if d.Severity == SeverityWarning && c.strict {
		d.Severity = SeverityError
	}
	if c.quiet && d.Severity != SeverityError {
		return
	}
	c.diagnostics = append(c.diagnostics, d)

	fields := []zap.Field{zap.String("category", string(d.Category))}
	if d.File != "" {
		fields = append(fields, zap.String("file", d.File), zap.Int("line", d.Line))
	}
	if d.Hint != "" {
		fields = append(fields, zap.String("hint", d.Hint))
	}
	switch d.Severity {
	case SeverityError:
		c.logger.Error(d.Message, fields...)
	case SeverityWarning:
		c.logger.Warn(d.Message, fields...)
	default:
		c.logger.Info(d.Message, fields...)
	}
}

// Warn adds a warning at file:line:col.
func (c *Collector) Warn(category Category, file string, line, col int, message string) {
	c.Report(Diagnostic{Severity: SeverityWarning, Category: category, File: file, Line: line, Column: col, Message: message})
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, file string, line, col int, message, hint string) {
	c.Report(Diagnostic{Severity: SeverityWarning, Category: category, File: file, Line: line, Column: col, Message: message, Hint: hint})
}

// Error adds an error diagnostic.
func (c *Collector) Error(category Category, file string, line int, message string) {
	c.Report(Diagnostic{Severity: SeverityError, Category: category, File: file, Line: line, Message: message})
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, file string, line int, message string) {
	c.Report(Diagnostic{Severity: SeverityInfo, Category: category, File: file, Line: line, Message: message})
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// ByCategory returns the diagnostics of one category.
func (c *Collector) ByCategory(cat Category) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Reset drops every collected diagnostic.
func (c *Collector) Reset() {
	if c != nil {
		c.diagnostics = nil
	}
}

func (c *Collector) count(sev Severity) int {
	n := 0
	for _, d := range c.Diagnostics() {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool { return c.count(SeverityError) > 0 }

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int { return c.count(SeverityError) }

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int { return c.count(SeverityWarning) }

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	var sb strings.Builder
	for _, d := range c.Diagnostics() {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

var (
	locationColor = color.New(color.FgCyan)
	errorColor    = color.New(color.FgHiRed, color.Bold)
	warningColor  = color.New(color.FgHiYellow)
	hintColor     = color.New(color.Faint)
)

// Write prints the diagnostics to w, coloured when pretty is set.
func (c *Collector) Write(w io.Writer, pretty bool) {
	for _, d := range c.Diagnostics() {
		if !pretty {
			fmt.Fprintln(w, d.String())
			continue
		}
		if loc := d.Location(); loc != "" {
			fmt.Fprintf(w, "%s - ", locationColor.Sprint(loc))
		}
		sev := warningColor
		if d.Severity == SeverityError {
			sev = errorColor
		}
		fmt.Fprintf(w, "%s: ", sev.Sprint(d.Severity))
		if d.Category != "" {
			fmt.Fprintf(w, "[%s] ", d.Category)
		}
		fmt.Fprintln(w, d.Message)
		if d.Hint != "" {
			fmt.Fprintf(w, "  %s\n", hintColor.Sprint("hint: "+d.Hint))
		}
	}
}

// Summary returns a summary line like "1 error(s), 2 warning(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	var parts []string
	if n := c.ErrorCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", n))
	}
	if n := c.WarningCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", n))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}

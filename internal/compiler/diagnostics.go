package compiler

import "fmt"

// DiagnosticCategory classifies a source diagnostic.
type DiagnosticCategory int

const (
	CategoryWarning DiagnosticCategory = 0
	CategoryError   DiagnosticCategory = 1
)

func (c DiagnosticCategory) Name() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is a problem found while loading or parsing source files.
type Diagnostic struct {
	FilePath string
	Line     int
	Column   int
	Category DiagnosticCategory
	Message  string
}

func (d Diagnostic) String() string {
	switch {
	case d.FilePath != "" && d.Line > 0:
		return fmt.Sprintf("%s(%d,%d): %s: %s", d.FilePath, d.Line, d.Column, d.Category.Name(), d.Message)
	case d.FilePath != "":
		return fmt.Sprintf("%s: %s", d.FilePath, d.Message)
	}
	return d.Message
}

package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/checker"
)

// ErrorCategory classifies a fatal analysis fault.
type ErrorCategory string

const (
	// CategoryConfig covers missing inputs: no files, no entry point.
	CategoryConfig ErrorCategory = "config"
	// CategoryAnnotation covers invalid decorator usage and parameter combinations.
	CategoryAnnotation ErrorCategory = "annotation"
	// CategoryType covers type expressions that cannot be resolved.
	CategoryType ErrorCategory = "type"
)

// GenerateMetadataError is a fatal analysis fault. The first one raised
// aborts the run.
type GenerateMetadataError struct {
	Category ErrorCategory
	Message  string
	// Pos is the offending node; it may be the zero Pos for config faults.
	Pos ast.Pos
	// Source is the text of the offending line.
	Source string
	// Method is the Controller.method the fault was found in, when known.
	Method string
}

func (e *GenerateMetadataError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Method != "" && !strings.Contains(e.Message, e.Method) {
		fmt.Fprintf(&sb, " (in %s)", e.Method)
	}
	if e.Pos.IsValid() {
		fmt.Fprintf(&sb, "\n    at %s", e.Pos)
		if src := strings.TrimSpace(e.Source); src != "" {
			fmt.Fprintf(&sb, "\n    %s", src)
		}
	}
	return sb.String()
}

// IsGenerateMetadataError reports whether err wraps a GenerateMetadataError
// of one of the given categories (any category when none are given).
func IsGenerateMetadataError(err error, categories ...ErrorCategory) bool {
	var gme *GenerateMetadataError
	if !errors.As(err, &gme) {
		return false
	}
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if gme.Category == c {
			return true
		}
	}
	return false
}

// configError is a fault found before any source is analyzed.
func configError(format string, args ...any) *GenerateMetadataError {
	return &GenerateMetadataError{Category: CategoryConfig, Message: fmt.Sprintf(format, args...)}
}

// errorf builds a positioned error, pulling the offending line from the program.
func (s *Session) errorf(category ErrorCategory, pos ast.Pos, format string, args ...any) *GenerateMetadataError {
	e := &GenerateMetadataError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Method:   s.methodName,
	}
	if s.checker != nil && pos.IsValid() {
		e.Source = s.checker.Program().File(pos.File).Line(pos.Line)
	}
	return e
}

// typeError converts a checker failure into a type fault.
func (s *Session) typeError(err error, fallback ast.Pos) error {
	if err == nil {
		return nil
	}
	var gme *GenerateMetadataError
	if errors.As(err, &gme) {
		return err
	}
	var ce *checker.Error
	if errors.As(err, &ce) {
		pos := ce.Pos
		if !pos.IsValid() {
			pos = fallback
		}
		return s.errorf(CategoryType, pos, "%s", ce.Message)
	}
	return s.errorf(CategoryType, fallback, "%s", err.Error())
}

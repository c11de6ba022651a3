package analyzer

import (
	"fmt"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
)

// warn reports a non-fatal structural problem at pos.
func (s *Session) warn(category diagnostic.Category, pos ast.Pos, format string, args ...any) {
	s.warnWithHint(category, pos, "", format, args...)
}

func (s *Session) warnWithHint(category diagnostic.Category, pos ast.Pos, hint, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.methodName != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, s.methodName)
	}
	if s.diags == nil {
		s.logger.Warn(msg)
		return
	}
	s.diags.WarnWithHint(category, pos.File, pos.Line, pos.Column, msg, hint)
}

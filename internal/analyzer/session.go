package analyzer

import (
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/checker"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// Session holds the caches of one Generate call. Nothing in it outlives the
// call, so repeated runs never observe each other's resolutions.
type Session struct {
	checker *checker.Checker
	refs    *metadata.ReferenceTypeMap

	// resolved maps canonical reference names to their finished slots.
	resolved map[string]metadata.ReferenceID
	// inProgress maps names currently being resolved to their reserved slots.
	inProgress map[string]metadata.ReferenceID
	fixups     []fixup

	diags  *diagnostic.Collector
	logger *zap.Logger

	// methodName is the Controller.method under analysis, for error attribution.
	methodName string
}

// fixup records a reference taken to a slot that was still being resolved.
type fixup struct {
	name string
	id   metadata.ReferenceID
	pos  ast.Pos
}

func newSession(c *checker.Checker, diags *diagnostic.Collector, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		checker:    c,
		refs:       metadata.NewReferenceTypeMap(),
		resolved:   make(map[string]metadata.ReferenceID),
		inProgress: make(map[string]metadata.ReferenceID),
		diags:      diags,
		logger:     logger,
	}
}

// named returns the reference for name, resolving it with build on first
// use. A name requested again while its build is running gets a reference
// to the reserved slot and a deferred fixup.
func (s *Session) named(name string, pos ast.Pos, build func() (metadata.ReferenceDefinition, error)) (metadata.Type, error) {
	if id, ok := s.resolved[name]; ok {
		return s.refs.Ref(id), nil
	}
	if id, ok := s.inProgress[name]; ok {
		s.fixups = append(s.fixups, fixup{name: name, id: id, pos: pos})
		s.logger.Debug("circular reference", zap.String("type", name))
		return s.refs.Ref(id), nil
	}

	id := s.refs.Reserve(name)
	s.inProgress[name] = id
	def, err := build()
	delete(s.inProgress, name)
	if err != nil {
		return nil, err
	}
	s.refs.Define(id, def)
	s.resolved[name] = id
	return s.refs.Ref(id), nil
}

// applyFixups verifies every deferred circular reference now points at a
// defined slot. Slots are patched in place by Define, so a reference taken
// while its target was a placeholder already sees the final definition.
func (s *Session) applyFixups() error {
	for _, f := range s.fixups {
		if def := s.refs.Get(f.id); def == nil || def.Placeholder {
			return s.errorf(CategoryType, f.pos, "Circular reference to %s was never resolved", f.name)
		}
	}
	s.fixups = nil
	if err := s.refs.Validate(); err != nil {
		return &GenerateMetadataError{Category: CategoryType, Message: err.Error()}
	}
	return nil
}

// enterMethod sets the Controller.method used to attribute errors.
func (s *Session) enterMethod(controller, method string) {
	s.methodName = metadata.QualifiedName(controller, method)
}

func (s *Session) leaveMethod() { s.methodName = "" }

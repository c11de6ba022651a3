package openapi

import (
	"context"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/multierr"
)

// ValidationError represents an OpenAPI compliance error.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateDocument checks doc against the OpenAPI 3 structure rules and
// reports every problem found. Examples are not validated against their
// schemas.
func ValidateDocument(ctx context.Context, doc *openapi3.T) error {
	err := doc.Validate(ctx, openapi3.DisableExamplesValidation())
	for _, e := range checkOperations(doc) {
		err = multierr.Append(err, e)
	}
	return err
}

// checkOperations enforces operation-level rules kin-openapi leaves to the
// author: unique operation ids, and responses on every operation.
func checkOperations(doc *openapi3.T) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string)
	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		ops := items[path].Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			prefix := fmt.Sprintf("paths[%q].%s", path, method)
			if op.Responses == nil || op.Responses.Len() == 0 {
				errs = append(errs, ValidationError{Path: prefix + ".responses", Message: "at least one response is required"})
			}
			if op.OperationID == "" {
				continue
			}
			if first, ok := seen[op.OperationID]; ok {
				errs = append(errs, ValidationError{
					Path:    prefix + ".operationId",
					Message: fmt.Sprintf("duplicate operationId %q, first used by %s", op.OperationID, first),
				})
				continue
			}
			seen[op.OperationID] = prefix
		}
	}
	return errs
}

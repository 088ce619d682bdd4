package domain

import "errors"

// Validation failure kinds. Details are attached with fmt.Errorf("%w: ...")
// so callers can classify with errors.Is.
var (
	ErrEmptyInput             = errors.New("empty query")
	ErrUnsafeStatement        = errors.New("unsafe statement")
	ErrInvalidSchemaReference = errors.New("invalid schema reference")
	ErrSchemaIntrospection    = errors.New("schema introspection failed")
)

// Reason codes reported to presentation layers, metrics and the audit log.
const (
	ReasonEmptyInput             = "empty_input"
	ReasonUnsafeStatement        = "unsafe_statement"
	ReasonInvalidSchemaReference = "invalid_schema_reference"
	ReasonSchemaIntrospection    = "schema_introspection_failure"
)

// Reason returns the stable reason code for a validation error, or "" when err
// is nil or not a validation failure.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return ReasonEmptyInput
	case errors.Is(err, ErrUnsafeStatement):
		return ReasonUnsafeStatement
	case errors.Is(err, ErrInvalidSchemaReference):
		return ReasonInvalidSchemaReference
	case errors.Is(err, ErrSchemaIntrospection):
		return ReasonSchemaIntrospection
	default:
		return ""
	}
}

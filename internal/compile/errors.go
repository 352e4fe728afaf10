package compile

import "fmt"

// ErrorCode categorizes compilation failures.
//
// Every code represents a programmer error in query construction. Errors
// are raised synchronously during compilation and never retried; there is
// no partial-failure mode.
type ErrorCode string

const (
	// ErrCodeNonConstantArgument indicates an extension argument that
	// does not reduce to a compile-time constant.
	ErrCodeNonConstantArgument ErrorCode = "NON_CONSTANT_ARGUMENT"

	// ErrCodeInvalidArgument indicates an argument outside its legal
	// domain (e.g. a sampling fraction of 0).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeDuplicateClause indicates a single-use clause invoked twice.
	ErrCodeDuplicateClause ErrorCode = "DUPLICATE_CLAUSE"

	// ErrCodeConflictingClause indicates mutually-exclusive clauses, or a
	// single-use modifier repeated even with the same value.
	ErrCodeConflictingClause ErrorCode = "CONFLICTING_CLAUSE"

	// ErrCodeUnknownEntity indicates a reference to an entity the model
	// catalog does not contain.
	ErrCodeUnknownEntity ErrorCode = "UNKNOWN_ENTITY"

	// ErrCodeUnknownColumn indicates a dictionary attribute that is not
	// declared on its entity.
	ErrCodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"
)

// Error reports one compilation failure with the offending construct named.
type Error struct {
	Code      ErrorCode
	Construct string
	Message   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Construct, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errf builds an Error.
func errf(code ErrorCode, construct, format string, args ...any) error {
	return &Error{Code: code, Construct: construct, Message: fmt.Sprintf(format, args...)}
}

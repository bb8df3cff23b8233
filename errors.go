package relate

import "errors"

var (
	// ErrMalformedTemplate is returned when a template contains an
	// unterminated placeholder, an empty name or a name with characters
	// outside [A-Za-z0-9_].
	ErrMalformedTemplate = errors.New("relate: malformed placeholder")

	// ErrUnknownParameter is returned when a bind references a name
	// that does not occur in the rewritten query text.
	ErrUnknownParameter = errors.New("relate: unknown parameter")

	// ErrTupleArity is returned when the number of supplied values or
	// records does not match the declared size of a list parameter.
	ErrTupleArity = errors.New("relate: bound count does not match declared count")

	// ErrIllegalState marks a programming error: declaring or binding
	// after a query was built, or pulling a row the stream does not have.
	ErrIllegalState = errors.New("relate: illegal state")

	// ErrNoRows is returned by QueryOne when the result set is empty.
	ErrNoRows = errors.New("relate: no rows in result set")

	// ErrMultiRows is returned by QueryOne and QueryMaybe when more
	// than one row comes back. This usually means a missing join
	// criteria or limit condition in the query.
	ErrMultiRows = errors.New("relate: multiple rows returned")
)

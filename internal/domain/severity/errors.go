package severity

import "errors"

var (
	// ErrMalformed is returned by Parse when the text is not a single JSON object.
	ErrMalformed = errors.New("severity: malformed classifier output")
	// ErrMissing is returned by Parse when the object has no severity field.
	ErrMissing = errors.New("severity: field missing")
	// ErrOutOfRange is returned by Parse for a severity outside {1,2,4}.
	ErrOutOfRange = errors.New("severity: value out of range")
)

package phpserialize

// Sentinel error values returned by the public API. Detail (offending
// bytes, limits, indices) is attached with fmt.Errorf("%w: ...") so
// callers can match categories with errors.Is.

import "errors"

// Grammar errors
var (
	ErrUnexpectedEOF       = errors.New("phpserialize: unexpected end of input")
	ErrMalformed           = errors.New("phpserialize: malformed input")
	ErrInvalidBoolean      = errors.New("phpserialize: invalid boolean value")
	ErrInvalidTypeTag      = errors.New("phpserialize: invalid type indicator")
	ErrUnsupportedArrayKey = errors.New("phpserialize: unsupported array key type")
	ErrIndexMismatch       = errors.New("phpserialize: array index out of order")
)

// Target errors
var (
	ErrTypeMismatch      = errors.New("phpserialize: value does not fit target type")
	ErrInvalidUTF8       = errors.New("phpserialize: byte string is not valid UTF-8")
	ErrNumericConversion = errors.New("phpserialize: numeric conversion failed")
)

// Feature errors
var (
	ErrUnsupportedFeature = errors.New("phpserialize: unsupported feature")
	ErrLengthRequired     = errors.New("phpserialize: sequence length required")
)

// Resource-limit errors
var (
	ErrMaxDepthExceeded  = errors.New("phpserialize: max nesting depth exceeded")
	ErrSizeLimitExceeded = errors.New("phpserialize: declared size exceeds limit")
)

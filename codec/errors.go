package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies failures of the token pipeline
type Kind int

// Error kinds
const (
	// KindUnknown is returned by KindOf for errors not raised by this module
	KindUnknown Kind = iota
	// KindConfiguration is an invalid setting detected at setup
	KindConfiguration
	// KindEncoding is a payload that cannot be serialized or sealed
	KindEncoding
	// KindDecoding is a malformed token
	KindDecoding
	// KindVerification is a signature, tag or key unwrap failure
	KindVerification
	// KindUnsupportedMode is an unknown mode or algorithm
	KindUnsupportedMode
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindConfiguration:   "configuration",
	KindEncoding:        "encoding",
	KindDecoding:        "decoding",
	KindVerification:    "verification",
	KindUnsupportedMode: "unsupported_mode",
}

// String returns the name of the kind
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure
type Error struct {
	Kind Kind
	Err  error
}

// Error implements error
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Err == nil
}

// Sentinels to match with errors.Is
var (
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrEncoding        = &Error{Kind: KindEncoding}
	ErrDecoding        = &Error{Kind: KindDecoding}
	ErrVerification    = &Error{Kind: KindVerification}
	ErrUnsupportedMode = &Error{Kind: KindUnsupportedMode}
)

// NewError returns classified error with formatted message
func NewError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// WrapError returns classified error with the message prepended to err
func WrapError(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.WithMessage(err, msg)}
}

// KindOf returns the kind of the first *Error in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

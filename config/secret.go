package config

import (
	"fmt"
)

const redacted = "[REDACTED]"

// Secret holds key material that must not appear in diagnostics
type Secret []byte

// String implements fmt.Stringer
func (s Secret) String() string {
	if len(s) == 0 {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer
func (s Secret) GoString() string {
	return s.String()
}

// Format implements fmt.Formatter, all verbs print the redacted form
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(s.String()))
}

// MarshalJSON implements json.Marshaler
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MarshalYAML implements yaml.Marshaler
func (s Secret) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Bytes returns a copy of the secret
func (s Secret) Bytes() []byte {
	return append([]byte(nil), s...)
}

// IsEmpty returns true if the secret is not set
func (s Secret) IsEmpty() bool {
	return len(s) == 0
}

package config

import (
	"strings"

	"github.com/effective-security/jwtfilter/codec"
)

// Mode is the direction of the filter
type Mode int

// Modes
const (
	Pack Mode = iota + 1
	Unpack
)

// CodecKind selects the token format
type CodecKind int

// Codecs
const (
	// CodecJWT is HMAC signed JWT
	CodecJWT CodecKind = iota + 1
	// CodecJWE is asymmetric JWE
	CodecJWE
)

// PackSource selects the payload of the packed token
type PackSource int

// Pack sources
const (
	// PackRecord uses the whole record
	PackRecord PackSource = iota + 1
	// PackFields uses the named fields
	PackFields
	// PackOneField uses the value of a single field
	PackOneField
)

// Destination places the token or the decoded payload in the output record
type Destination int

// Destinations
const (
	// ToField embeds the result as a new field
	ToField Destination = iota + 1
	// ToReplace replaces the source field in place
	ToReplace
	// ToMerge merges decoded fields into the record, unpack only
	ToMerge
	// ToRecord makes the result the whole output record
	ToRecord
)

// Verify is the policy applied when a token fails verification
type Verify int

// Verification policies
const (
	// VerifyNone never checks signatures
	VerifyNone Verify = iota + 1
	// VerifyMark passes the record with the validity field set to false
	VerifyMark
	// VerifyDiscard drops the record
	VerifyDiscard
)

// Serialization of JWE tokens
type Serialization int

// Serializations
const (
	Compact Serialization = iota + 1
	JSON
)

var modeNames = map[string]Mode{
	"pack":   Pack,
	"unpack": Unpack,
}

var codecNames = map[string]CodecKind{
	"jwt": CodecJWT,
	"jwe": CodecJWE,
}

var packSourceNames = map[string]PackSource{
	"record":       PackRecord,
	"whole-record": PackRecord,
	"fields":       PackFields,
	"named-fields": PackFields,
	"one_field":    PackOneField,
	"single-field": PackOneField,
}

var packDestinationNames = map[string]Destination{
	"field":          ToField,
	"embed-as-field": ToField,
	"replace":        ToReplace,
	"replace-source": ToReplace,
	"record":         ToRecord,
	"whole-record":   ToRecord,
}

var unpackDestinationNames = map[string]Destination{
	"field":          ToField,
	"embed-as-field": ToField,
	"merge":          ToMerge,
	"replace":        ToReplace,
	"replace-source": ToReplace,
	"record":         ToRecord,
	"whole-record":   ToRecord,
}

var verifyNames = map[string]Verify{
	"none":               VerifyNone,
	"no":                 VerifyNone,
	"mark":               VerifyMark,
	"mark-only":          VerifyMark,
	"warn":               VerifyMark,
	"discard":            VerifyDiscard,
	"discard-on-failure": VerifyDiscard,
}

var serializationNames = map[string]Serialization{
	"compact": Compact,
	"json":    JSON,
}

func (m Mode) String() string {
	switch m {
	case Pack:
		return "pack"
	case Unpack:
		return "unpack"
	}
	return "unknown"
}

func (c CodecKind) String() string {
	switch c {
	case CodecJWT:
		return "jwt"
	case CodecJWE:
		return "jwe"
	}
	return "unknown"
}

func (s PackSource) String() string {
	switch s {
	case PackRecord:
		return "record"
	case PackFields:
		return "fields"
	case PackOneField:
		return "one_field"
	}
	return "unknown"
}

func (d Destination) String() string {
	switch d {
	case ToField:
		return "field"
	case ToReplace:
		return "replace"
	case ToMerge:
		return "merge"
	case ToRecord:
		return "record"
	}
	return "unknown"
}

func (v Verify) String() string {
	switch v {
	case VerifyNone:
		return "none"
	case VerifyMark:
		return "mark"
	case VerifyDiscard:
		return "discard"
	}
	return "unknown"
}

// ParseMode returns Mode by name
func ParseMode(s string) (Mode, error) {
	return lookup(modeNames, s, "mode")
}

func lookup[T any](names map[string]T, s, option string) (T, error) {
	v, ok := names[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		var zero T
		return zero, codec.NewError(codec.KindUnsupportedMode, "unsupported %s: %q", option, s)
	}
	return v, nil
}

func choices[T any](names map[string]T) []any {
	list := make([]any, 0, len(names))
	for k := range names {
		list = append(list, k)
	}
	return list
}

// Package codec defines the token codec contract shared by the JWT and JWE
// implementations, and the error taxonomy of the record token pipeline.
package codec

import "github.com/effective-security/jwtfilter/record"

// DecodeResult is the outcome of decoding a token.
//
// Valid is true only when the signature or the authentication tag was verified,
// or when verification was explicitly disabled.
// For signed tokens that fail verification Payload holds the unverified claims;
// for encrypted tokens that fail decryption Payload is nil.
type DecodeResult struct {
	Payload *record.Record
	Valid   bool
	// Err describes why Valid is false
	Err error
}

// Codec provides uniform token encoding and decoding
type Codec interface {
	// Name returns the codec name used in diagnostics
	Name() string
	// Encode returns a token for the payload
	Encode(payload any) (string, error)
	// Decode returns the decoded token.
	// Malformed tokens are returned as error of KindDecoding,
	// verification failures are reported in DecodeResult.
	Decode(token string) (*DecodeResult, error)
}

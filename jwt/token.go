package jwt

import (
	"encoding/base64"

	"github.com/effective-security/jwtfilter/record"
)

// Token for JWT
type Token struct {
	Raw       string         // The raw token.  Populated when you Parse a token
	Algorithm string         // The signing algorithm named in the header
	Header    map[string]any // The first segment of the token
	Payload   *record.Record // The second segment of the token
	Signature []byte         // The third segment of the token, decoded
}

// DecodeSegment JWT specific base64url encoding with padding stripped
func DecodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(seg)
}

// EncodeSegment returns JWT specific base64url encoding with padding stripped
func EncodeSegment(seg []byte) string {
	return base64.RawURLEncoding.EncodeToString(seg)
}

// decodeSignature rejects non-canonical encodings of the signature segment
func decodeSignature(seg string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(seg)
}

package jwt

import (
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/jwtfilter/codec"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Supported HMAC algorithms
const (
	HS256 = "HS256"
	HS384 = "HS384"
	HS512 = "HS512"
)

var signingMethods = map[string]*gojwt.SigningMethodHMAC{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
}

// Algorithms returns the names of supported HMAC algorithms
func Algorithms() []string {
	list := make([]string, 0, len(signingMethods))
	for alg := range signingMethods {
		list = append(list, alg)
	}
	sort.Strings(list)
	return list
}

// IsSupported returns true if the algorithm is a supported HMAC algorithm
func IsSupported(alg string) bool {
	_, ok := signingMethods[alg]
	return ok
}

// Signer produces compact HMAC signed tokens
type Signer struct {
	method *gojwt.SigningMethodHMAC
	key    []byte
}

// NewSigner returns Signer for the HMAC algorithm and the secret
func NewSigner(alg string, key []byte) (*Signer, error) {
	method, ok := signingMethods[alg]
	if !ok {
		return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported algorithm: %q", alg)
	}
	if len(key) == 0 {
		return nil, codec.NewError(codec.KindConfiguration, "signing key not provided")
	}
	return &Signer{
		method: method,
		key:    append([]byte(nil), key...),
	}, nil
}

// Algorithm returns the signing algorithm
func (s *Signer) Algorithm() string {
	return s.method.Alg()
}

// Sign returns a compact JWT for the payload.
// The result is deterministic for the same payload, key and algorithm.
func (s *Signer) Sign(payload any) (string, error) {
	header := map[string]any{
		"typ": "JWT",
		"alg": s.method.Alg(),
	}

	jsonHeader, err := json.Marshal(header)
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to encode header")
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to encode payload")
	}

	sstr := EncodeSegment(jsonHeader) + "." + EncodeSegment(jsonPayload)
	sig, err := s.method.Sign(sstr, s.key)
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to sign token")
	}
	return sstr + "." + EncodeSegment(sig), nil
}

// VerifySignature returns error if JWT signature is invalid.
// Only HMAC algorithms are accepted, the comparison is constant time.
func VerifySignature(alg, signingString string, signature []byte, key []byte) error {
	method, ok := signingMethods[alg]
	if !ok {
		return codec.NewError(codec.KindVerification, "unsupported signing method: %q", alg)
	}
	if len(key) == 0 {
		return codec.NewError(codec.KindVerification, "verification key not provided")
	}
	if err := method.Verify(signingString, signature, key); err != nil {
		return codec.NewError(codec.KindVerification, "invalid signature")
	}
	return nil
}

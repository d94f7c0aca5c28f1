package jwt

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/record"
	"github.com/effective-security/xlog"
)

// ParseUnverified parses the token but doesn't validate the signature.
// Returned error is of codec.KindDecoding.
func ParseUnverified(tokenString string) (token *Token, parts []string, err error) {
	parts = strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, parts, codec.NewError(codec.KindDecoding, "malformed token: expected 3 segments, got %d", len(parts))
	}

	token = &Token{
		Raw: tokenString,
	}

	// parse Header
	headerBytes, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, nil, codec.WrapError(codec.KindDecoding, err, "failed to decode header")
	}
	dec := json.NewDecoder(bytes.NewReader(headerBytes))
	dec.UseNumber()
	if err = dec.Decode(&token.Header); err != nil {
		return nil, nil, codec.WrapError(codec.KindDecoding, err, "failed to unmarshal header")
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, nil, codec.NewError(codec.KindDecoding, "failed to unmarshal header: unexpected data after JSON object")
	}

	// parse Payload
	payloadBytes, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, nil, codec.WrapError(codec.KindDecoding, err, "failed to decode payload")
	}
	if token.Payload, err = record.Parse(payloadBytes); err != nil {
		return nil, nil, codec.WrapError(codec.KindDecoding, err, "failed to unmarshal payload")
	}

	if token.Signature, err = decodeSignature(parts[2]); err != nil {
		return nil, nil, codec.WrapError(codec.KindDecoding, err, "failed to decode signature")
	}

	alg, ok := token.Header["alg"].(string)
	if !ok {
		return nil, nil, codec.NewError(codec.KindDecoding, "invalid token: no alg specified")
	}
	token.Algorithm = alg

	return token, parts, nil
}

// Decoder decodes compact JWT with HMAC secret
type Decoder struct {
	key    []byte
	verify bool
}

// NewDecoder returns Decoder.
// When verify is false, the signature is never checked and every well formed
// token is reported as valid.
func NewDecoder(key []byte, verify bool) (*Decoder, error) {
	if verify && len(key) == 0 {
		return nil, codec.NewError(codec.KindConfiguration, "cannot verify tokens without a secret")
	}
	return &Decoder{
		key:    append([]byte(nil), key...),
		verify: verify,
	}, nil
}

// Decode parses the token and verifies the signature with the algorithm
// from the token header.
func (d *Decoder) Decode(tokenString string) (*codec.DecodeResult, error) {
	token, parts, err := ParseUnverified(tokenString)
	if err != nil {
		return nil, err
	}

	res := &codec.DecodeResult{
		Payload: token.Payload,
		Valid:   true,
	}
	if !d.verify {
		return res, nil
	}

	err = VerifySignature(token.Algorithm, parts[0]+"."+parts[1], token.Signature, d.key)
	if err != nil {
		logger.KV(xlog.TRACE, "reason", "verify", "alg", token.Algorithm, "err", err.Error())
		res.Valid = false
		res.Err = err
	}
	return res, nil
}

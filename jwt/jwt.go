package jwt

import (
	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/jwtfilter", "jwt")

// Codec implements codec.Codec for HMAC signed JWT
type Codec struct {
	signer  *Signer
	decoder *Decoder
}

var _ codec.Codec = (*Codec)(nil)

// NewCodec returns HMAC JWT codec.
// The key may be empty only for decoding without verification.
func NewCodec(alg string, key []byte, verify bool) (*Codec, error) {
	c := new(Codec)
	if len(key) > 0 {
		s, err := NewSigner(alg, key)
		if err != nil {
			return nil, err
		}
		c.signer = s
	} else if !IsSupported(alg) {
		return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported algorithm: %q", alg)
	}

	d, err := NewDecoder(key, verify)
	if err != nil {
		return nil, err
	}
	c.decoder = d
	return c, nil
}

// Name returns codec name
func (c *Codec) Name() string {
	return "jwt"
}

// Encode returns signed token for the payload
func (c *Codec) Encode(payload any) (string, error) {
	if c.signer == nil {
		return "", codec.NewError(codec.KindEncoding, "signing key not provided")
	}
	return c.signer.Sign(payload)
}

// Decode returns decoded token
func (c *Codec) Decode(token string) (*codec.DecodeResult, error) {
	return c.decoder.Decode(token)
}

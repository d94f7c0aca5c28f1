package jwe

import (
	"crypto"
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/record"
	"github.com/effective-security/xlog"
	jose "github.com/go-jose/go-jose/v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/jwtfilter", "jwe")

// Default algorithms
const (
	DefaultKeyAlgorithm      = string(jose.RSA1_5)
	DefaultContentEncryption = string(jose.A128GCM)
)

var keyAlgorithms = map[string]jose.KeyAlgorithm{
	string(jose.RSA1_5):         jose.RSA1_5,
	string(jose.RSA_OAEP):       jose.RSA_OAEP,
	string(jose.RSA_OAEP_256):   jose.RSA_OAEP_256,
	string(jose.ECDH_ES):        jose.ECDH_ES,
	string(jose.ECDH_ES_A128KW): jose.ECDH_ES_A128KW,
	string(jose.ECDH_ES_A256KW): jose.ECDH_ES_A256KW,
}

var contentEncryptions = map[string]jose.ContentEncryption{
	string(jose.A128GCM):       jose.A128GCM,
	string(jose.A192GCM):       jose.A192GCM,
	string(jose.A256GCM):       jose.A256GCM,
	string(jose.A128CBC_HS256): jose.A128CBC_HS256,
	string(jose.A256CBC_HS512): jose.A256CBC_HS512,
}

// KeyAlgorithms returns supported key management algorithms
func KeyAlgorithms() []string {
	return sortedKeys(keyAlgorithms)
}

// ContentEncryptions returns supported content encryption algorithms
func ContentEncryptions() []string {
	return sortedKeys(contentEncryptions)
}

// IsSupportedKeyAlgorithm returns true if the key management algorithm is supported
func IsSupportedKeyAlgorithm(alg string) bool {
	_, ok := keyAlgorithms[alg]
	return ok
}

// IsSupportedContentEncryption returns true if the content encryption is supported
func IsSupportedContentEncryption(enc string) bool {
	_, ok := contentEncryptions[enc]
	return ok
}

func sortedKeys[T any](m map[string]T) []string {
	list := make([]string, 0, len(m))
	for k := range m {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}

// Encrypter produces JWE tokens for a recipient public key.
// go-jose generates a fresh content encryption key and IV on every call
// from crypto/rand, so Encrypter is safe for concurrent use.
type Encrypter struct {
	enc        jose.Encrypter
	keyAlg     jose.KeyAlgorithm
	contentEnc jose.ContentEncryption
	full       bool
}

// NewEncrypter returns Encrypter.
// When full is true, tokens use the JSON serialization, otherwise compact.
func NewEncrypter(pub crypto.PublicKey, keyAlg, contentEnc string, full bool) (*Encrypter, error) {
	ka, ok := keyAlgorithms[keyAlg]
	if !ok {
		return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported key algorithm: %q", keyAlg)
	}
	ce, ok := contentEncryptions[contentEnc]
	if !ok {
		return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported content encryption: %q", contentEnc)
	}
	if pub == nil {
		return nil, codec.NewError(codec.KindConfiguration, "public key not provided")
	}

	opts := (&jose.EncrypterOptions{}).WithContentType("JSON")
	enc, err := jose.NewEncrypter(ce, jose.Recipient{Algorithm: ka, Key: pub}, opts)
	if err != nil {
		return nil, codec.WrapError(codec.KindConfiguration, errors.WithStack(err), "unable to create encrypter")
	}
	return &Encrypter{
		enc:        enc,
		keyAlg:     ka,
		contentEnc: ce,
		full:       full,
	}, nil
}

// Encrypt returns JWE token for JSON encoded payload
func (e *Encrypter) Encrypt(payload any) (string, error) {
	js, err := json.Marshal(payload)
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to encode payload")
	}

	obj, err := e.enc.Encrypt(js)
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to encrypt payload")
	}

	if e.full {
		return obj.FullSerialize(), nil
	}
	token, err := obj.CompactSerialize()
	if err != nil {
		return "", codec.WrapError(codec.KindEncoding, errors.WithStack(err), "unable to serialize token")
	}
	return token, nil
}

// Decrypter opens JWE tokens with a recipient private key
type Decrypter struct {
	key    crypto.PrivateKey
	keyAlg jose.KeyAlgorithm
}

// NewDecrypter returns Decrypter.
// Tokens with a key management algorithm different from keyAlg are rejected.
func NewDecrypter(key crypto.PrivateKey, keyAlg string) (*Decrypter, error) {
	ka, ok := keyAlgorithms[keyAlg]
	if !ok {
		return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported key algorithm: %q", keyAlg)
	}
	if key == nil {
		return nil, codec.NewError(codec.KindConfiguration, "private key not provided")
	}
	return &Decrypter{key: key, keyAlg: ka}, nil
}

// errDecrypt is the single failure reported for unwrap, tag or algorithm mismatch
var errDecrypt = codec.NewError(codec.KindVerification, "unable to decrypt token")

// Decrypt returns the decrypted payload.
// Malformed tokens are returned as error; any decryption failure is reported
// with Valid false and no payload.
func (d *Decrypter) Decrypt(token string) (*codec.DecodeResult, error) {
	obj, err := jose.ParseEncrypted(token)
	if err != nil {
		return nil, codec.WrapError(codec.KindDecoding, err, "malformed token")
	}

	if obj.Header.Algorithm != string(d.keyAlg) {
		logger.KV(xlog.DEBUG, "reason", "unexpected_alg", "alg", obj.Header.Algorithm)
		return &codec.DecodeResult{Err: errDecrypt}, nil
	}

	plaintext, err := obj.Decrypt(d.key)
	if err != nil {
		logger.KV(xlog.TRACE, "reason", "decrypt", "err", err.Error())
		return &codec.DecodeResult{Err: errDecrypt}, nil
	}

	payload, err := record.Parse(plaintext)
	if err != nil {
		return nil, codec.WrapError(codec.KindDecoding, err, "failed to unmarshal payload")
	}
	return &codec.DecodeResult{
		Payload: payload,
		Valid:   true,
	}, nil
}

// Codec implements codec.Codec for JWE.
// Either side may be nil when the codec is used in one direction only.
type Codec struct {
	Encrypter *Encrypter
	Decrypter *Decrypter
}

var _ codec.Codec = (*Codec)(nil)

// Name returns codec name
func (c *Codec) Name() string {
	return "jwe"
}

// Encode returns encrypted token
func (c *Codec) Encode(payload any) (string, error) {
	if c.Encrypter == nil {
		return "", codec.NewError(codec.KindEncoding, "public key not provided")
	}
	return c.Encrypter.Encrypt(payload)
}

// Decode returns decrypted token
func (c *Codec) Decode(token string) (*codec.DecodeResult, error) {
	if c.Decrypter == nil {
		return nil, codec.NewError(codec.KindDecoding, "private key not provided")
	}
	return c.Decrypter.Decrypt(token)
}

package certutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/fileutil"
	jose "github.com/go-jose/go-jose/v3"
)

// LoadKeySource returns key material from the source.
// The source is either inline PEM or JWK, a `file://` or `env://` reference,
// or a plain file path.
func LoadKeySource(source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("key source not provided")
	}
	if isInline(source) {
		return []byte(source), nil
	}

	resolved, err := LoadSource(source)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to resolve key source")
	}
	if isInline(resolved) {
		return []byte(resolved), nil
	}

	if err = fileutil.FileExists(resolved); err != nil {
		return nil, errors.WithMessage(err, "unable to load key")
	}
	b, err := os.ReadFile(resolved)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load key")
	}
	return bytes.TrimSpace(b), nil
}

func isInline(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "-----BEGIN") || strings.HasPrefix(s, "{")
}

// ParsePublicKey returns public key from PEM or JWK encoded data.
// PEM may contain PKIX or PKCS#1 public key, or a certificate.
func ParsePublicKey(data []byte) (crypto.PublicKey, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("{")) {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(data); err != nil {
			return nil, errors.WithMessage(err, "unable to parse JWK")
		}
		if !jwk.IsPublic() {
			return jwk.Public().Key, nil
		}
		return jwk.Key, nil
	}

	rest := data
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch block.Type {
		case "PUBLIC KEY":
			pub, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, errors.WithMessage(err, "unable to parse public key")
			}
			return pub, nil
		case "RSA PUBLIC KEY":
			pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, errors.WithMessage(err, "unable to parse RSA public key")
			}
			return pub, nil
		case "CERTIFICATE":
			crt, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, errors.WithMessage(err, "unable to parse certificate")
			}
			return crt.PublicKey, nil
		}
	}
	return nil, errors.New("public key must be PEM or JWK encoded")
}

// ParsePrivateKey returns private key from PEM or JWK encoded data.
// PEM may contain unencrypted PKCS#8, PKCS#1, or elliptic private key.
func ParsePrivateKey(data []byte) (crypto.PrivateKey, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("{")) {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(data); err != nil {
			return nil, errors.WithMessage(err, "unable to parse JWK")
		}
		if jwk.IsPublic() {
			return nil, errors.New("JWK does not contain private key")
		}
		return jwk.Key, nil
	}

	// Ignore any EC PARAMETERS blocks when looking for a key (openssl includes
	// them by default).
	var block *pem.Block
	rest := data
	for {
		block, rest = pem.Decode(rest)
		if block == nil || block.Type != "EC PARAMETERS" {
			break
		}
	}
	if block == nil {
		return nil, errors.New("private key must be PEM or JWK encoded")
	}
	if procType, ok := block.Headers["Proc-Type"]; ok && strings.Contains(procType, "ENCRYPTED") {
		return nil, errors.New("encrypted private key is not supported")
	}

	return ParsePrivateKeyDER(block.Bytes)
}

// ParsePrivateKeyDER parses a PKCS#1, PKCS#8, or elliptic curve
// DER-encoded private key.
func ParsePrivateKeyDER(keyDER []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(keyDER); err == nil {
		switch key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey:
			return key, nil
		}
		return nil, errors.Errorf("unsupported private key: %T", key)
	}
	if key, err := x509.ParsePKCS1PrivateKey(keyDER); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(keyDER); err == nil {
		return key, nil
	}
	return nil, errors.New("unable to parse private key")
}

// EncodePublicKeyToPEM returns PEM encoded public key
func EncodePublicKeyToPEM(pubKey crypto.PublicKey) ([]byte, error) {
	asn1Bytes, err := x509.MarshalPKIXPublicKey(pubKey)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: asn1Bytes,
	}), nil
}

// EncodePrivateKeyToPEM returns PEM encoded private key
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) (key []byte, err error) {
	switch priv := priv.(type) {
	case *rsa.PrivateKey:
		key = x509.MarshalPKCS1PrivateKey(priv)
		block := pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: key,
		}
		key = pem.EncodeToMemory(&block)
	case *ecdsa.PrivateKey:
		key, err = x509.MarshalECPrivateKey(priv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		block := pem.Block{
			Type:  "EC PRIVATE KEY",
			Bytes: key,
		}
		key = pem.EncodeToMemory(&block)
	default:
		return nil, errors.Errorf("unsupported key: %T", priv)
	}

	return
}

package certutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"

	"github.com/cockroachdb/errors"
	jose "github.com/go-jose/go-jose/v3"
)

// Key types
const (
	KeyTypeRSA   = "RSA"
	KeyTypeECDSA = "ECDSA"
)

// KeyInfo provides information about the key
type KeyInfo struct {
	KeySize   int
	Type      string
	IsPrivate bool
	Key       any
}

// NewKeyInfo returns *KeyInfo for public or private key
func NewKeyInfo(k any) (*KeyInfo, error) {
	ki := &KeyInfo{Key: k}
	var pubKey crypto.PublicKey

	switch typ := k.(type) {
	case *rsa.PrivateKey:
		ki.KeySize = typ.N.BitLen()
		ki.IsPrivate = true
		ki.Type = KeyTypeRSA
		return ki, nil
	case *ecdsa.PrivateKey:
		ki.Type = KeyTypeECDSA
		ki.IsPrivate = true
		ki.KeySize = typ.Curve.Params().BitSize
		return ki, nil
	case *jose.JSONWebKey:
		return NewKeyInfo(typ.Key)
	default:
		pubKey = k
	}

	switch typ := pubKey.(type) {
	case *rsa.PublicKey:
		ki.KeySize = typ.N.BitLen()
		ki.Type = KeyTypeRSA
	case *ecdsa.PublicKey:
		ki.Type = KeyTypeECDSA
		ki.KeySize = typ.Curve.Params().BitSize
	default:
		return nil, errors.Errorf("key not supported: %T", typ)
	}
	return ki, nil
}

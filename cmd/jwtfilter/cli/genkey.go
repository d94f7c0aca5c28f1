package cli

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/jwtfilter/certutil"
	"github.com/effective-security/x/values"
)

// GenKeyCmd generates a key pair for JWE
type GenKeyCmd struct {
	Type string `enum:"rsa,ec" default:"rsa" help:"key type: rsa or ec"`
	Size int    `help:"RSA modulus size in bits, or EC curve size: 256, 384 or 521"`
	Out  string `required:"" help:"output prefix, <prefix>.key and <prefix>.pub files are created"`
}

// Run the command
func (a *GenKeyCmd) Run(ctx *Cli) error {
	var (
		pvk crypto.Signer
		err error
	)
	switch a.Type {
	case "ec":
		pvk, err = generateECDSA(values.Select(a.Size > 0, a.Size, 256))
	default:
		pvk, err = rsa.GenerateKey(rand.Reader, values.Select(a.Size > 0, a.Size, 2048))
	}
	if err != nil {
		return errors.WithMessage(err, "unable to generate key")
	}

	key, err := certutil.EncodePrivateKeyToPEM(pvk)
	if err != nil {
		return err
	}
	pub, err := certutil.EncodePublicKeyToPEM(pvk.Public())
	if err != nil {
		return err
	}

	keyFile := a.Out + ".key"
	pubFile := a.Out + ".pub"
	if err = os.WriteFile(keyFile, key, 0600); err != nil {
		return errors.WithMessage(err, "unable to write key")
	}
	if err = os.WriteFile(pubFile, pub, 0644); err != nil {
		return errors.WithMessage(err, "unable to write public key")
	}

	ki, err := certutil.NewKeyInfo(pvk)
	if err != nil {
		return err
	}
	return ctx.WriteJSON(map[string]any{
		"type":   ki.Type,
		"size":   ki.KeySize,
		"key":    keyFile,
		"public": pubFile,
	})
}

func generateECDSA(size int) (*ecdsa.PrivateKey, error) {
	var curve elliptic.Curve
	switch size {
	case 256:
		curve = elliptic.P256()
	case 384:
		curve = elliptic.P384()
	case 521:
		curve = elliptic.P521()
	default:
		return nil, errors.Errorf("unsupported curve size: %d", size)
	}
	return ecdsa.GenerateKey(curve, rand.Reader)
}

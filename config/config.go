package config

import (
	"crypto"
	"encoding/json"
	"os"
	"strings"

	"github.com/effective-security/jwtfilter/certutil"
	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/jwe"
	"github.com/effective-security/jwtfilter/jwt"
	"github.com/effective-security/xlog"
	validation "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/jwtfilter", "config")

// Defaults
const (
	DefaultPackToField     = "jwt_packed"
	DefaultUnpackFromField = "jwt"
	DefaultUnpackToField   = "jwt_unpacked"
	DefaultValidityField   = "validity"
)

// Settings are the raw options of the filter as read from a file
type Settings struct {
	// Mode is pack or unpack
	Mode string `json:"mode" yaml:"mode"`
	// Codec is jwt (default) or jwe
	Codec string `json:"codec,omitempty" yaml:"codec,omitempty"`
	// Secret is HMAC key, inline or file:// env:// reference
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
	// SigningAlgorithm is HS256 (default), HS384 or HS512
	SigningAlgorithm string `json:"signing_algorithm,omitempty" yaml:"signing_algorithm,omitempty"`

	PackSource       string `json:"pack_source,omitempty" yaml:"pack_source,omitempty"`
	PackFromField    string `json:"pack_from_field,omitempty" yaml:"pack_from_field,omitempty"`
	PackDestination  string `json:"pack_destination,omitempty" yaml:"pack_destination,omitempty"`
	PackToField      string `json:"pack_to_field,omitempty" yaml:"pack_to_field,omitempty"`
	PackRemoveSource bool   `json:"pack_remove_source,omitempty" yaml:"pack_remove_source,omitempty"`

	UnpackFromField    string `json:"unpack_from_field,omitempty" yaml:"unpack_from_field,omitempty"`
	UnpackDestination  string `json:"unpack_destination,omitempty" yaml:"unpack_destination,omitempty"`
	UnpackToField      string `json:"unpack_to_field,omitempty" yaml:"unpack_to_field,omitempty"`
	UnpackVerify       string `json:"unpack_verify,omitempty" yaml:"unpack_verify,omitempty"`
	UnpackRemoveSource bool   `json:"unpack_remove_source,omitempty" yaml:"unpack_remove_source,omitempty"`

	// Fields is the allow-list of fields to pack or to extract on unpack
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	// ValidityField is the name of the verification marker added on unpack
	ValidityField string `json:"validity_field,omitempty" yaml:"validity_field,omitempty"`

	KeyAlgorithm      string `json:"key_encryption_alg,omitempty" yaml:"key_encryption_alg,omitempty"`
	ContentEncryption string `json:"content_encryption_alg,omitempty" yaml:"content_encryption_alg,omitempty"`
	Serialization     string `json:"serialization,omitempty" yaml:"serialization,omitempty"`
	PublicKey         string `json:"public_key,omitempty" yaml:"public_key,omitempty"`
	PrivateKey        string `json:"private_key,omitempty" yaml:"private_key,omitempty"`
}

// Config is the validated configuration.
// It is never modified after Validate returns.
type Config struct {
	Mode      Mode
	Codec     CodecKind
	Secret    Secret
	Algorithm string

	PackSource       PackSource
	PackFromField    string
	PackDestination  Destination
	PackToField      string
	PackRemoveSource bool

	UnpackFromField    string
	UnpackDestination  Destination
	UnpackToField      string
	UnpackVerify       Verify
	UnpackRemoveSource bool

	Fields        []string
	ValidityField string

	KeyAlgorithm      string
	ContentEncryption string
	Serialization     Serialization
	PublicKey         crypto.PublicKey
	PrivateKey        crypto.PrivateKey

	// Warnings lists non-fatal findings of Validate
	Warnings []string
}

// Load returns settings loaded from YAML or JSON file
func Load(file string) (*Settings, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, codec.WrapError(codec.KindConfiguration, err, "unable to read file")
	}

	var s Settings
	if strings.HasSuffix(file, ".json") {
		err = json.Unmarshal(raw, &s)
		if err != nil {
			return nil, codec.WrapError(codec.KindConfiguration, err, "unable to parse JSON: "+file)
		}
	} else {
		err = yaml.Unmarshal(raw, &s)
		if err != nil {
			return nil, codec.WrapError(codec.KindConfiguration, err, "unable to parse YAML: "+file)
		}
	}
	return &s, nil
}

// LoadConfig returns validated configuration loaded from a file
func LoadConfig(file string) (*Config, error) {
	s, err := Load(file)
	if err != nil {
		return nil, err
	}
	return Validate(s)
}

func (s *Settings) normalize() *Settings {
	n := *s
	n.Fields = append([]string(nil), s.Fields...)

	lower := func(v *string, def string) {
		*v = strings.ToLower(strings.TrimSpace(*v))
		if *v == "" {
			*v = def
		}
	}
	orDefault := func(v *string, def string) {
		*v = strings.TrimSpace(*v)
		if *v == "" {
			*v = def
		}
	}

	lower(&n.Mode, "")
	lower(&n.Codec, "jwt")
	lower(&n.PackSource, "record")
	lower(&n.PackDestination, "field")
	lower(&n.UnpackDestination, "field")
	lower(&n.UnpackVerify, "none")
	lower(&n.Serialization, "compact")
	orDefault(&n.PackToField, DefaultPackToField)
	orDefault(&n.UnpackFromField, DefaultUnpackFromField)
	orDefault(&n.UnpackToField, DefaultUnpackToField)
	orDefault(&n.ValidityField, DefaultValidityField)
	orDefault(&n.KeyAlgorithm, jwe.DefaultKeyAlgorithm)
	orDefault(&n.ContentEncryption, jwe.DefaultContentEncryption)
	orDefault(&n.SigningAlgorithm, jwt.HS256)
	n.SigningAlgorithm = strings.ToUpper(n.SigningAlgorithm)
	n.PackFromField = strings.TrimSpace(n.PackFromField)
	return &n
}

func (s *Settings) validateChoices() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.Mode, validation.In(choices(modeNames)...)),
		validation.Field(&s.Codec, validation.In(choices(codecNames)...)),
		validation.Field(&s.SigningAlgorithm, validation.In(toAny(jwt.Algorithms())...)),
		validation.Field(&s.PackSource, validation.In(choices(packSourceNames)...)),
		validation.Field(&s.PackDestination, validation.In(choices(packDestinationNames)...)),
		validation.Field(&s.UnpackDestination, validation.In(choices(unpackDestinationNames)...)),
		validation.Field(&s.UnpackVerify, validation.In(choices(verifyNames)...)),
		validation.Field(&s.Serialization, validation.In(choices(serializationNames)...)),
		validation.Field(&s.KeyAlgorithm, validation.In(toAny(jwe.KeyAlgorithms())...)),
		validation.Field(&s.ContentEncryption, validation.In(toAny(jwe.ContentEncryptions())...)),
	)
	if err != nil {
		return codec.WrapError(codec.KindUnsupportedMode, err, "unsupported option")
	}
	return nil
}

func toAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

// Validate checks the settings and returns immutable configuration.
// Key material referenced by the settings is loaded here.
func Validate(raw *Settings) (*Config, error) {
	if raw == nil {
		return nil, codec.NewError(codec.KindConfiguration, "settings not provided")
	}
	s := raw.normalize()
	if s.Mode == "" {
		return nil, codec.NewError(codec.KindConfiguration, "mode is required")
	}
	if err := s.validateChoices(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Algorithm:          s.SigningAlgorithm,
		PackFromField:      s.PackFromField,
		PackToField:        s.PackToField,
		PackRemoveSource:   s.PackRemoveSource,
		UnpackFromField:    s.UnpackFromField,
		UnpackToField:      s.UnpackToField,
		UnpackRemoveSource: s.UnpackRemoveSource,
		Fields:             s.Fields,
		ValidityField:      s.ValidityField,
		KeyAlgorithm:       s.KeyAlgorithm,
		ContentEncryption:  s.ContentEncryption,
	}
	// choices are validated, lookups can not fail
	cfg.Mode = modeNames[s.Mode]
	cfg.Codec = codecNames[s.Codec]
	cfg.PackSource = packSourceNames[s.PackSource]
	cfg.PackDestination = packDestinationNames[s.PackDestination]
	cfg.UnpackDestination = unpackDestinationNames[s.UnpackDestination]
	cfg.UnpackVerify = verifyNames[s.UnpackVerify]
	cfg.Serialization = serializationNames[s.Serialization]

	if s.Secret != "" {
		secret, err := certutil.LoadSource(s.Secret)
		if err != nil {
			return nil, codec.WrapError(codec.KindConfiguration, err, "unable to resolve secret")
		}
		cfg.Secret = Secret(secret)
	}

	var err error
	switch cfg.Mode {
	case Pack:
		err = cfg.validatePack()
	case Unpack:
		err = cfg.validateUnpack()
	}
	if err != nil {
		return nil, err
	}

	if cfg.Codec == CodecJWE {
		if err = cfg.loadKeys(s); err != nil {
			return nil, err
		}
	}

	for _, w := range cfg.Warnings {
		logger.KV(xlog.WARNING, "reason", "config", "warning", w)
	}
	logger.KV(xlog.DEBUG,
		"mode", cfg.Mode,
		"codec", cfg.Codec,
		"secret", cfg.Secret,
		"pack_source", cfg.PackSource,
		"pack_destination", cfg.PackDestination,
		"unpack_destination", cfg.UnpackDestination,
		"unpack_verify", cfg.UnpackVerify,
		"fields", cfg.Fields,
	)
	return cfg, nil
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

func (c *Config) validatePack() error {
	if c.Codec == CodecJWT && c.Secret.IsEmpty() {
		return codec.NewError(codec.KindConfiguration, "secret is required to pack JWT")
	}

	switch c.PackSource {
	case PackOneField:
		if c.PackFromField == "" {
			return codec.NewError(codec.KindConfiguration, "pack_from_field is required for one_field pack source")
		}
	case PackFields:
		if len(c.Fields) == 0 {
			return codec.NewError(codec.KindConfiguration, "fields are required for fields pack source")
		}
	case PackRecord:
		if c.PackDestination == ToReplace {
			c.warn("whole record pack source with replace destination is equivalent to record destination")
			c.PackDestination = ToRecord
		}
	}

	if c.PackRemoveSource && c.PackDestination == ToRecord {
		c.warn("pack_remove_source has no effect with record destination")
	}
	return nil
}

func (c *Config) validateUnpack() error {
	if c.UnpackFromField == "" {
		return codec.NewError(codec.KindConfiguration, "unpack_from_field is required")
	}
	switch c.Codec {
	case CodecJWT:
		if c.UnpackVerify != VerifyNone && c.Secret.IsEmpty() {
			return codec.NewError(codec.KindConfiguration, "cannot verify tokens without a secret")
		}
		if c.UnpackVerify == VerifyNone {
			c.warn("signatures are not verified, every token is accepted as valid")
		}
	case CodecJWE:
		if c.UnpackVerify == VerifyNone {
			c.warn("JWE decryption is always authenticated, verify policy set to mark")
			c.UnpackVerify = VerifyMark
		}
	}
	return nil
}

func (c *Config) loadKeys(s *Settings) error {
	var key any
	switch c.Mode {
	case Pack:
		b, err := certutil.LoadKeySource(s.PublicKey)
		if err != nil {
			return codec.WrapError(codec.KindConfiguration, err, "unable to load public key")
		}
		if c.PublicKey, err = certutil.ParsePublicKey(b); err != nil {
			return codec.WrapError(codec.KindConfiguration, err, "unable to load public key")
		}
		key = c.PublicKey
	case Unpack:
		b, err := certutil.LoadKeySource(s.PrivateKey)
		if err != nil {
			return codec.WrapError(codec.KindConfiguration, err, "unable to load private key")
		}
		if c.PrivateKey, err = certutil.ParsePrivateKey(b); err != nil {
			return codec.WrapError(codec.KindConfiguration, err, "unable to load private key")
		}
		key = c.PrivateKey
	}

	ki, err := certutil.NewKeyInfo(key)
	if err != nil {
		return codec.WrapError(codec.KindConfiguration, err, "unable to load key")
	}
	rsaAlg := strings.HasPrefix(c.KeyAlgorithm, "RSA")
	if rsaAlg != (ki.Type == certutil.KeyTypeRSA) {
		return codec.NewError(codec.KindConfiguration, "%s key does not match key algorithm %s", ki.Type, c.KeyAlgorithm)
	}
	logger.KV(xlog.INFO, "key_type", ki.Type, "key_size", ki.KeySize, "private", ki.IsPrivate, "alg", c.KeyAlgorithm)
	return nil
}

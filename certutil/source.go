package certutil

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Source schemes
const (
	FileSchema = "file://"
	EnvSchema  = "env://"
)

// LoadSource resolves the value of a `file://` or `env://` reference.
// File content is returned with surrounding whitespace trimmed,
// a value without a known schema is returned as is.
func LoadSource(source string) (string, error) {
	switch {
	case strings.HasPrefix(source, FileSchema):
		name := strings.TrimPrefix(source, FileSchema)
		b, err := os.ReadFile(name)
		if err != nil {
			return "", errors.WithMessagef(err, "unable to read file %q", name)
		}
		return strings.TrimSpace(string(b)), nil
	case strings.HasPrefix(source, EnvSchema):
		name := strings.TrimPrefix(source, EnvSchema)
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", errors.Errorf("environment variable %q is not set", name)
		}
		return strings.TrimSpace(val), nil
	}
	return source, nil
}

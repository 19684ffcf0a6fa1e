// Package envvar loads runtime configuration from environment variables,
// with secret values resolved through a pluggable provider.
package envvar

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/courseflow/board/internal"
)

// Provider resolves secret configuration values by key.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration reads plain values from the environment and secret values,
// marked by a "/SECURE" suffix on the indirection variable, from the
// provider.
type Configuration struct {
	provider Provider
}

// Load reads the env file at the received path into the process
// environment. Values already present in the environment win.
func Load(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "godotenv.Load")
	}

	return nil
}

// New instantiates the configuration.
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value for the received key. When the environment carries
// "<key>_SECURE", its value names the provider path to resolve instead.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(key + "_SECURE")
	if valSecret == "" {
		return res, nil
	}

	valSecret = strings.TrimSuffix(valSecret, "/SECURE")

	res, err := c.provider.Get(valSecret)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "provider.Get")
	}

	return res, nil
}

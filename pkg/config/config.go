// Package config loads run parameters from YAML and turns them into
// validated ring parameters and a random source.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	"rlwe-kex/pkg/hash"
	"rlwe-kex/pkg/params"
	"rlwe-kex/pkg/sampling"
)

const (
	// SourcePRNG draws from a lattigo keyed PRNG. With a seed the stream is
	// reproducible; without one it is keyed from system randomness.
	SourcePRNG = "prng"

	// SourceXOF draws from SHAKE-128 over the seed. A seed is required.
	SourceXOF = "xof"
)

// Config is the on-disk configuration.
type Config struct {
	N        int    `yaml:"n"`
	Q        uint64 `yaml:"q"`
	Source   string `yaml:"source"`
	Seed     string `yaml:"seed"`
	LogLevel string `yaml:"loglevel"`
}

// Default returns n=1024, q=40961, an unseeded PRNG and info logging.
func Default() Config {
	return Config{
		N:        params.DefaultN,
		Q:        params.DefaultQ,
		Source:   SourcePRNG,
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		// Both the sentinel and the decoder error stay reachable.
		return Config{}, fmt.Errorf("%w: decoding yaml: %w", params.ErrConfiguration, err)
	}
	return c, nil
}

// Params validates n and q.
func (c Config) Params() (params.Params, error) {
	return params.New(c.N, c.Q)
}

// NewSource builds the configured random source for modulus q.
func (c Config) NewSource(q uint64) (sampling.Source, error) {
	switch c.Source {
	case SourcePRNG, "":
		if c.Seed == "" {
			return sampling.NewRandomSource(q)
		}
		// The keyed PRNG accepts at most 64 key bytes.
		return sampling.NewKeyedSource(hash.H([]byte(c.Seed), 32), q)
	case SourceXOF:
		if c.Seed == "" {
			return nil, errors.Wrap(params.ErrConfiguration, "source xof requires a seed")
		}
		return sampling.NewXOFSource([]byte(c.Seed), 0, q), nil
	default:
		return nil, errors.Wrapf(params.ErrConfiguration, "unknown source %q", c.Source)
	}
}

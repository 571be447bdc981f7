package simulation

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/uepsim/pkg/channel"
	"github.com/ja7ad/uepsim/pkg/uep"
)

// Config is the full set of recognized simulation options.
//
// NBlocks > 0 runs exactly that many blocks. NBlocks == 0 switches to the
// error-limited mode: at most NBlocksMax blocks are run, and the run stops
// early once at least NBlocksMin blocks are done and every class has
// accumulated WantedErrors errors.
type Config struct {
	uep.Params     `yaml:",inline"`
	channel.Config `yaml:",inline"`

	NBlocks  int     `yaml:"nblocks" json:"nblocks"`
	Overhead float64 `yaml:"overhead" json:"overhead"`
	Workers  int     `yaml:"workers" json:"workers"`
	Seed     int64   `yaml:"seed" json:"seed"`

	NBlocksMin   int `yaml:"nblocks_min" json:"nblocks_min"`
	NBlocksMax   int `yaml:"nblocks_max" json:"nblocks_max"`
	WantedErrors int `yaml:"wanted_errors" json:"wanted_errors"`
}

// _defaultConfig returns the defaults used by the reference experiments.
func _defaultConfig() *Config {
	return &Config{
		Params: uep.Params{
			EF:    1,
			C:     0.1,
			Delta: 0.5,
		},
		Config: channel.Config{
			MarkovPBG: 1, // with pGB == 0: always good
		},
		NBlocks: 1,
		Seed:    1,
	}
}

// DefaultConfig returns a copy of the default configuration. Ks must still
// be set before use.
func DefaultConfig() Config { return *_defaultConfig() }

// ReadConfig decodes a YAML document on top of the defaults without
// validating it. Unknown fields are rejected. Missing RFs default to 1 for
// every class.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if len(cfg.RFs) == 0 {
		cfg.RFs = uep.DefaultRFs(cfg.Ks)
	}
	return cfg, nil
}

// LoadConfig is ReadConfig followed by Validate.
func LoadConfig(r io.Reader) (Config, error) {
	cfg, err := ReadConfig(r)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks every option; the returned error wraps ErrInvalidParameters.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	if c.IIDPer != 0 && c.MarkovPGB != 0 {
		return fmt.Errorf("%w: iid_per and markov channel are mutually exclusive", ErrInvalidParameters)
	}
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	if !(c.Overhead >= 0) || math.IsInf(c.Overhead, 1) {
		return fmt.Errorf("%w: overhead %v", ErrInvalidParameters, c.Overhead)
	}
	if c.NBlocks < 0 {
		return fmt.Errorf("%w: nblocks %d", ErrInvalidParameters, c.NBlocks)
	}
	if c.NBlocks == 0 {
		if c.NBlocksMax < 1 {
			return fmt.Errorf("%w: nblocks_max must be >= 1 when nblocks is 0", ErrInvalidParameters)
		}
		if c.NBlocksMin < 0 || c.NBlocksMin > c.NBlocksMax {
			return fmt.Errorf("%w: nblocks_min %d outside [0,%d]", ErrInvalidParameters, c.NBlocksMin, c.NBlocksMax)
		}
		if c.WantedErrors < 1 {
			return fmt.Errorf("%w: wanted_errors must be >= 1 when nblocks is 0", ErrInvalidParameters)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidParameters, c.Workers)
	}
	return nil
}

// ErrorLimited reports whether the run length is driven by error counts.
func (c Config) ErrorLimited() bool { return c.NBlocks == 0 }

// N returns the number of transmissions per block, ceil(K*(1+overhead)).
func (c Config) N() int {
	return int(math.Ceil(float64(c.K()) * (1 + c.Overhead)))
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	c.Params = c.Params.Clone()
	return c
}

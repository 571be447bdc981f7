package channel

import (
	"fmt"
	"math/rand"
)

type Kind int

const (
	NoLoss Kind = iota // every symbol delivered
	IID                // independent Bernoulli drops
	Markov             // two-state Gilbert-Elliott drops
)

func (k Kind) String() string {
	switch k {
	case IID:
		return "iid"
	case Markov:
		return "markov"
	default:
		return "noloss"
	}
}

// Model decides whether each transmitted symbol survives.
type Model interface {
	// Reset restores the canonical initial state.
	Reset()
	// Poll advances the model once and reports whether the symbol is delivered.
	Poll() bool
	Kind() Kind
}

// Config carries the recognized channel options. The zero value selects
// the error-free channel.
type Config struct {
	IIDPer    float64 `yaml:"iid_per" json:"iid_per"`
	MarkovPGB float64 `yaml:"markov_pgb" json:"markov_pgb"`
	MarkovPBG float64 `yaml:"markov_pbg" json:"markov_pbg"`
}

// Kind returns the variant New would build for c.
func (c Config) Kind() Kind {
	switch {
	case c.IIDPer != 0:
		return IID
	case c.MarkovPGB != 0:
		return Markov
	default:
		return NoLoss
	}
}

// Validate checks the parameters of the variant selected by c.
func (c Config) Validate() error {
	switch c.Kind() {
	case IID:
		return validateIID(c.IIDPer)
	case Markov:
		return validateMarkov(c.MarkovPGB, c.MarkovPBG)
	default:
		return nil
	}
}

// New returns the Model chosen by the selection rule:
//   - IIDPer != 0: IID
//   - MarkovPGB != 0: Markov
//   - otherwise: NoLoss
func New(c Config, rng *rand.Rand) (Model, error) {
	switch c.Kind() {
	case IID:
		return NewIID(c.IIDPer, rng)
	case Markov:
		m, err := NewMarkov(c.MarkovPGB, c.MarkovPBG, rng)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return NewNoLoss(), nil
	}
}

type noLoss struct{}

// NewNoLoss returns a channel that never drops.
func NewNoLoss() Model { return noLoss{} }

func (noLoss) Reset()     {}
func (noLoss) Poll() bool { return true }
func (noLoss) Kind() Kind { return NoLoss }

type iid struct {
	p   float64
	rng *rand.Rand
}

// NewIID returns a channel dropping each symbol independently with
// probability p, 0 <= p < 1.
func NewIID(p float64, rng *rand.Rand) (Model, error) {
	if err := validateIID(p); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidParameters)
	}
	return &iid{p: p, rng: rng}, nil
}

func (c *iid) Reset()     {}
func (c *iid) Poll() bool { return c.rng.Float64() >= c.p }
func (c *iid) Kind() Kind { return IID }

func validateIID(p float64) error {
	if !(p >= 0 && p < 1) {
		return fmt.Errorf("%w: iid loss probability %v outside [0,1)", ErrInvalidParameters, p)
	}
	return nil
}

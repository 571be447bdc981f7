package channel

import (
	"fmt"
	"math/rand"
)

type markovState uint8

const (
	good markovState = iota
	bad
)

// MarkovModel is the two-state Gilbert-Elliott channel.
type MarkovModel struct {
	pGB, pBG float64
	state    markovState
	rng      *rand.Rand
}

// NewMarkov returns a Gilbert-Elliott channel with Good->Bad probability
// pGB and Bad->Good probability pBG, both in (0,1]. The chain starts Good.
func NewMarkov(pGB, pBG float64, rng *rand.Rand) (*MarkovModel, error) {
	if err := validateMarkov(pGB, pBG); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidParameters)
	}
	return &MarkovModel{pGB: pGB, pBG: pBG, state: good, rng: rng}, nil
}

func (m *MarkovModel) Reset() { m.state = good }

// Poll moves the chain one step, then drops iff the new state is Bad.
func (m *MarkovModel) Poll() bool {
	switch m.state {
	case good:
		if m.rng.Float64() < m.pGB {
			m.state = bad
		}
	case bad:
		if m.rng.Float64() < m.pBG {
			m.state = good
		}
	}
	return m.state == good
}

func (m *MarkovModel) Kind() Kind { return Markov }

// StationaryLoss is the long-run fraction of time spent in the Bad state.
func (m *MarkovModel) StationaryLoss() float64 {
	return m.pGB / (m.pGB + m.pBG)
}

// MarkovFromBurst derives (pGB, pBG) from the average loss rate and the
// average length of a run of consecutive losses.
func MarkovFromBurst(avgPER, avgBadRun float64) (pGB, pBG float64, err error) {
	if !(avgPER >= 0 && avgPER < 1) {
		return 0, 0, fmt.Errorf("%w: average loss rate %v outside [0,1)", ErrInvalidParameters, avgPER)
	}
	if !(avgBadRun >= 1) {
		return 0, 0, fmt.Errorf("%w: average bad run %v below 1", ErrInvalidParameters, avgBadRun)
	}
	pBG = 1 / avgBadRun
	pGB = pBG * avgPER / (1 - avgPER)
	return pGB, pBG, nil
}

func validateMarkov(pGB, pBG float64) error {
	if !(pGB > 0 && pGB <= 1) {
		return fmt.Errorf("%w: markov pGB %v outside (0,1]", ErrInvalidParameters, pGB)
	}
	if !(pBG > 0 && pBG <= 1) {
		return fmt.Errorf("%w: markov pBG %v outside (0,1]", ErrInvalidParameters, pBG)
	}
	return nil
}

// Package decoder defines the contract between the simulation engine and a
// fountain-code decoder, and ships a reference peeling decoder.
//
// The engine only needs to know which source symbols were recovered, so
// decoders work on encoding rows (index sets) and never see payloads.
package decoder

import (
	"errors"
	"time"
)

// ErrMalformedRow is returned by AddRow for an empty row, a row with
// repeated indices or an index outside [0,K).
var ErrMalformedRow = errors.New("decoder: malformed row")

// Decoder recovers source symbols from the rows of the received symbols of
// one block.
type Decoder interface {
	// Reset clears the per-block state; K is unchanged.
	Reset()
	// AddRow submits the row of one received symbol.
	AddRow(row []int) error
	// Run decodes with the rows submitted since the last Reset.
	Run() error
	// Recovered reports, per source index, whether the symbol was decoded.
	Recovered() []bool
}

// Report carries optional per-block diagnostics.
type Report struct {
	AvgRipple float64
	Duration  time.Duration
}

// Reporter is implemented by decoders that expose diagnostics for the last Run.
type Reporter interface {
	Report() Report
}

// Factory builds a decoder for K source symbols.
type Factory func(k int) Decoder

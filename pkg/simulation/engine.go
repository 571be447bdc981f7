package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ja7ad/uepsim/pkg/channel"
	"github.com/ja7ad/uepsim/pkg/decoder"
	"github.com/ja7ad/uepsim/pkg/uep"
)

// Engine runs independent blocks of one UEP configuration at one overhead:
// n transmissions per block, losses decided by the channel, survivors
// decoded, unrecovered symbols counted per class.
//
// An Engine owns its RNG streams, channel state and decoder and is not safe
// for concurrent use.
type Engine struct {
	cfg    Config
	n      int
	ranges []uep.ClassRange

	rows   *uep.RowGenerator
	ch     channel.Model
	dec    decoder.Decoder
	logger *slog.Logger
}

// NewEngine validates cfg and builds the row generator, channel and decoder.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	cfg = cfg.Clone()

	rows, err := uep.NewRowGenerator(cfg.Params, DeriveSeed(cfg.Seed, streamRows))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	ch, err := channel.New(cfg.Config, newRand(DeriveSeed(cfg.Seed, streamChannel)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	dec := o.factory(rows.K())
	if dec == nil {
		return nil, fmt.Errorf("%w: decoder factory returned nil", ErrInvalidParameters)
	}

	return &Engine{
		cfg:    cfg,
		n:      cfg.N(),
		ranges: cfg.ClassRanges(),
		rows:   rows,
		ch:     ch,
		dec:    dec,
		logger: o.logger,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg.Clone() }

// N returns the number of transmissions per block.
func (e *Engine) N() int { return e.n }

// Channel returns the channel kind in use.
func (e *Engine) Channel() channel.Kind { return e.ch.Kind() }

// Run simulates the configured number of blocks. A decoder failure aborts
// the run with a *BlockError; no partial result is returned. ctx is checked
// between blocks.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	limit := e.cfg.NBlocks
	if e.cfg.ErrorLimited() {
		limit = e.cfg.NBlocksMax
	}

	acc := newAccumulator(e.ranges, e.n)
	for b := 0; b < limit; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		br, err := e.runBlock()
		if err != nil {
			return nil, &BlockError{Block: b, Err: err}
		}
		acc.add(br)

		if e.cfg.ErrorLimited() && acc.blocks >= e.cfg.NBlocksMin && acc.enoughErrors(e.cfg.WantedErrors) {
			e.logger.Debug("error limit reached", "blocks", acc.blocks, "errors", acc.errorCounts)
			break
		}
	}

	res := acc.result()
	e.logger.Debug("engine done",
		"blocks", res.NBlocks, "n", e.n, "channel", e.ch.Kind().String(),
		"error_rates", res.ErrorRates, "drop_rate", res.DropRate)
	return res, nil
}

func (e *Engine) runBlock() (blockResult, error) {
	br := blockResult{errors: make([]int, len(e.ranges))}

	e.ch.Reset()
	e.dec.Reset()

	start := time.Now()
	for i := 0; i < e.n; i++ {
		if !e.ch.Poll() {
			br.drops++
			continue
		}
		if err := e.dec.AddRow(e.rows.NextRow()); err != nil {
			return blockResult{}, err
		}
	}
	br.encode = time.Since(start)

	start = time.Now()
	if err := e.dec.Run(); err != nil {
		return blockResult{}, err
	}
	br.decode = time.Since(start)

	rec := e.dec.Recovered()
	if len(rec) != e.rows.K() {
		return blockResult{}, fmt.Errorf("decoder reported %d symbols, want %d", len(rec), e.rows.K())
	}
	for c, cr := range e.ranges {
		for _, ok := range rec[cr.Start:cr.End] {
			if !ok {
				br.errors[c]++
			}
		}
	}

	if rp, ok := e.dec.(decoder.Reporter); ok {
		rep := rp.Report()
		br.ripple, br.hasRipple = rep.AvgRipple, true
		if rep.Duration > 0 {
			br.decode = rep.Duration
		}
	}
	return br, nil
}

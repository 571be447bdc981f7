package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ja7ad/uepsim/pkg/decoder"
	"github.com/ja7ad/uepsim/pkg/stats"
)

// workerStream offsets worker seeds away from the per-engine streams.
const workerStream uint64 = 1 << 32

// Split distributes nblocks over p workers: everyone gets nblocks/p and the
// first nblocks%p workers get one more. Split(10, 3) is [4 3 3].
func Split(nblocks, p int) []int {
	if p < 1 {
		return nil
	}
	shares := make([]int, p)
	q, r := nblocks/p, nblocks%p
	for i := range shares {
		shares[i] = q
		if i < r {
			shares[i]++
		}
	}
	return shares
}

// Runner fans one configuration out over independent engines and merges
// their results.
type Runner struct {
	cfg     Config
	workers int
	factory decoder.Factory
	logger  *slog.Logger
}

// NewRunner validates cfg and resolves the worker count.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	workers := o.workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Runner{
		cfg:     cfg.Clone(),
		workers: workers,
		factory: o.factory,
		logger:  o.logger,
	}, nil
}

// Workers returns the number of workers Run starts at most.
func (r *Runner) Workers() int { return r.workers }

// Run starts one engine per non-empty share, each with its own seed derived
// from Config.Seed, waits for all of them and merges the results. If any
// worker fails the first failure (by worker index) is returned as a
// *WorkerError and nothing is merged.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfgs := r.workerConfigs()

	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	start := time.Now()
	var wg sync.WaitGroup
	for i, wc := range cfgs {
		if wc == nil {
			continue
		}
		wg.Add(1)
		go func(i int, wc Config) {
			defer wg.Done()
			eng, err := NewEngine(wc, WithDecoder(r.factory), WithLogger(r.logger.With("worker", i)))
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = eng.Run(ctx)
		}(i, *wc)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			r.logger.Debug("worker failed", "worker", i, "err", err)
			return nil, &WorkerError{Worker: i, Err: err}
		}
	}

	merged, err := Merge(compact(results))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("parallel run done",
		"workers", len(cfgs), "blocks", merged.NBlocks, "elapsed", time.Since(start))
	return merged, nil
}

// workerConfigs returns one config per worker, nil for workers with nothing
// to do.
func (r *Runner) workerConfigs() []*Config {
	p := r.workers
	cfgs := make([]*Config, p)

	if !r.cfg.ErrorLimited() {
		for i, share := range Split(r.cfg.NBlocks, p) {
			if share == 0 {
				continue
			}
			c := r.cfg.Clone()
			c.NBlocks = share
			c.Workers = 1
			c.Seed = DeriveSeed(r.cfg.Seed, workerStream+uint64(i))
			cfgs[i] = &c
		}
		return cfgs
	}

	maxShares := Split(r.cfg.NBlocksMax, p)
	minShares := Split(r.cfg.NBlocksMin, p)
	wanted := (r.cfg.WantedErrors + p - 1) / p
	for i := range cfgs {
		if maxShares[i] == 0 {
			continue
		}
		c := r.cfg.Clone()
		c.NBlocksMax = maxShares[i]
		c.NBlocksMin = minShares[i]
		c.WantedErrors = wanted
		c.Workers = 1
		c.Seed = DeriveSeed(r.cfg.Seed, workerStream+uint64(i))
		cfgs[i] = &c
	}
	return cfgs
}

func compact(results []*Result) []*Result {
	out := results[:0:0]
	for _, res := range results {
		if res != nil {
			out = append(out, res)
		}
	}
	return out
}

// Merge combines worker results. Counters are summed; error rates, drop rate
// and the ripple and timing means are averaged with each result weighted by
// its block count.
func Merge(results []*Result) (*Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrInvalidParameters)
	}
	classes := len(results[0].Ks)
	for _, res := range results[1:] {
		if len(res.Ks) != classes || res.N != results[0].N {
			return nil, fmt.Errorf("%w: merging results of different configurations", ErrInvalidParameters)
		}
	}

	out := &Result{
		N:           results[0].N,
		Ks:          append([]int(nil), results[0].Ks...),
		ErrorCounts: make([]int, classes),
		ErrorRates:  make([]float64, classes),
	}
	rates := make([]stats.WeightedAverage, classes)
	var drop, ripple, encode, decode stats.WeightedAverage

	for _, res := range results {
		w := float64(res.NBlocks)
		out.NBlocks += res.NBlocks
		out.DropCount += res.DropCount
		for c := 0; c < classes; c++ {
			out.ErrorCounts[c] += res.ErrorCounts[c]
			rates[c].Add(res.ErrorRates[c], w)
		}
		drop.Add(res.DropRate, w)
		ripple.Add(res.AvgRipple, w)
		encode.Add(res.AvgEncodeSec, w)
		decode.Add(res.AvgDecodeSec, w)
	}

	for c := range rates {
		out.ErrorRates[c] = rates[c].Mean()
	}
	out.DropRate = drop.Mean()
	out.AvgRipple = ripple.Mean()
	out.AvgEncodeSec = encode.Mean()
	out.AvgDecodeSec = decode.Mean()
	return out, nil
}

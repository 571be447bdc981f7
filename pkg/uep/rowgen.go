package uep

import (
	"math/rand"
	"slices"
)

// RowGenerator produces the encoding rows of a UEP LT code: each row is the
// set of source symbols XOR-ed into one transmitted symbol.
//
// The source block is expanded before the standard LT step: every class is
// repeated RF_i times and the repeated block is then replicated EF times. A
// degree d is drawn from the robust soliton over the expanded size, d
// distinct expanded positions are drawn, and each position is folded back
// onto its source symbol. Classes with larger RF therefore appear in rows
// more often relative to their size.
//
// A RowGenerator is not safe for concurrent use.
type RowGenerator struct {
	params  Params
	k       int
	kRep    int // sum(K_i * RF_i)
	kOut    int // EF * kRep
	soliton *Soliton
	rng     *rand.Rand

	// scratch
	picked map[int]struct{}
	stamp  []uint32
	gen    uint32
}

// NewRowGenerator validates p and returns a generator seeded with seed.
func NewRowGenerator(p Params, seed int64) (*RowGenerator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newRowGenerator(p.Clone(), seed), nil
}

// newRowGenerator builds a generator for already validated params.
func newRowGenerator(p Params, seed int64) *RowGenerator {
	g := &RowGenerator{
		params: p,
		k:      p.K(),
		kRep:   p.repeatedK(),
		kOut:   p.ExpandedK(),
		rng:    rand.New(rand.NewSource(seed)),
	}
	g.soliton = NewSoliton(g.kOut, p.C, p.Delta)
	g.picked = make(map[int]struct{})
	g.stamp = make([]uint32, g.k)
	return g
}

// K returns the number of source symbols.
func (g *RowGenerator) K() int { return g.k }

// ExpandedK returns the block size of the underlying LT code.
func (g *RowGenerator) ExpandedK() int { return g.kOut }

// Params returns a copy of the code parameters.
func (g *RowGenerator) Params() Params { return g.params.Clone() }

// Clone returns an independent generator with the same parameters and a
// fresh RNG stream seeded with seed.
func (g *RowGenerator) Clone(seed int64) *RowGenerator {
	return newRowGenerator(g.params.Clone(), seed)
}

// NextRow returns the next encoding row: sorted, distinct source indices in
// [0,K), never empty. The returned slice is owned by the caller.
func (g *RowGenerator) NextRow() []int {
	d := g.soliton.Sample(g.rng)
	g.sampleExpanded(d)

	g.gen++
	if g.gen == 0 {
		clear(g.stamp)
		g.gen = 1
	}
	row := make([]int, 0, d)
	for i := range g.picked {
		src := g.source(i)
		if g.stamp[src] == g.gen {
			continue
		}
		g.stamp[src] = g.gen
		row = append(row, src)
	}
	slices.Sort(row)
	return row
}

// sampleExpanded fills g.picked with d distinct positions in [0,kOut)
// using Floyd's algorithm.
func (g *RowGenerator) sampleExpanded(d int) {
	clear(g.picked)
	for j := g.kOut - d; j < g.kOut; j++ {
		t := g.rng.Intn(j + 1)
		if _, ok := g.picked[t]; ok {
			g.picked[j] = struct{}{}
		} else {
			g.picked[t] = struct{}{}
		}
	}
}

// source maps an expanded position onto its source symbol index.
func (g *RowGenerator) source(i int) int {
	j := i % g.kRep
	off := 0
	for c, k := range g.params.Ks {
		span := k * g.params.RFs[c]
		if j < span {
			return off + j%k
		}
		j -= span
		off += k
	}
	// unreachable for j < kRep
	return g.k - 1
}

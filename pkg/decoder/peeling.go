package decoder

import (
	"fmt"
	"time"
)

// Peeling is the message-passing (peeling) decoder of LT codes.
//
// Each round collects the input symbols reachable through degree-one
// received symbols (the ripple), marks them decoded and removes them from
// every other received symbol. Decoding stops when all K inputs are known
// or the ripple is empty.
type Peeling struct {
	k    int
	rows [][]int

	recovered []bool
	report    Report

	// per-run scratch
	deg    []int
	rest   []int // XOR of the still-unknown neighbours of each output
	used   []bool
	inAdj  [][]int
	seen   []bool
	ripple []int
}

// NewPeeling returns a peeling decoder for k source symbols.
func NewPeeling(k int) Decoder { return newPeeling(k) }

func newPeeling(k int) *Peeling {
	return &Peeling{
		k:         k,
		recovered: make([]bool, k),
		inAdj:     make([][]int, k),
		seen:      make([]bool, k),
	}
}

// K returns the number of source symbols.
func (p *Peeling) K() int { return p.k }

func (p *Peeling) Reset() {
	p.rows = p.rows[:0]
	clear(p.recovered)
	p.report = Report{}
}

func (p *Peeling) AddRow(row []int) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row", ErrMalformedRow)
	}
	clear(p.seen)
	for _, i := range row {
		if i < 0 || i >= p.k {
			return fmt.Errorf("%w: index %d outside [0,%d)", ErrMalformedRow, i, p.k)
		}
		if p.seen[i] {
			return fmt.Errorf("%w: repeated index %d", ErrMalformedRow, i)
		}
		p.seen[i] = true
	}
	p.rows = append(p.rows, append([]int(nil), row...))
	return nil
}

func (p *Peeling) Run() error {
	start := time.Now()
	p.init()

	var (
		decoded     int
		rounds      int
		rippleTotal int
		pending     []int
		nextPending []int
	)
	for o, d := range p.deg {
		if d == 1 {
			pending = append(pending, o)
		}
	}

	for decoded < p.k {
		// Degree-one outputs release their last unknown neighbour.
		p.ripple = p.ripple[:0]
		for _, o := range pending {
			if p.used[o] || p.deg[o] != 1 {
				continue
			}
			p.used[o] = true
			in := p.rest[o]
			if !p.recovered[in] {
				p.recovered[in] = true
				p.ripple = append(p.ripple, in)
				decoded++
			}
		}
		if len(p.ripple) == 0 {
			break
		}
		rounds++
		rippleTotal += len(p.ripple)

		// Substitute the ripple into the remaining outputs.
		nextPending = nextPending[:0]
		for _, in := range p.ripple {
			for _, o := range p.inAdj[in] {
				if p.used[o] {
					continue
				}
				p.deg[o]--
				p.rest[o] ^= in
				if p.deg[o] == 1 {
					nextPending = append(nextPending, o)
				}
			}
		}
		pending, nextPending = nextPending, pending
	}

	if rounds > 0 {
		p.report.AvgRipple = float64(rippleTotal) / float64(rounds)
	}
	p.report.Duration = time.Since(start)
	return nil
}

func (p *Peeling) init() {
	n := len(p.rows)
	p.deg = resize(p.deg, n)
	p.rest = resize(p.rest, n)
	if cap(p.used) < n {
		p.used = make([]bool, n)
	}
	p.used = p.used[:n]
	clear(p.used)
	clear(p.recovered)
	for i := range p.inAdj {
		p.inAdj[i] = p.inAdj[i][:0]
	}
	for o, row := range p.rows {
		p.deg[o] = len(row)
		x := 0
		for _, in := range row {
			x ^= in
			p.inAdj[in] = append(p.inAdj[in], o)
		}
		p.rest[o] = x
	}
}

func (p *Peeling) Recovered() []bool { return p.recovered }

func (p *Peeling) Report() Report { return p.report }

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

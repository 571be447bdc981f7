package uep

import (
	"fmt"
	"slices"
)

// Params describes a UEP LT code.
//
//   - Ks: sizes of the protection classes, class 0 is the most protected
//   - RFs: repetition factor of each class (>= 1)
//   - EF: expansion factor applied to the whole repeated block (>= 1)
//   - C, Delta: robust soliton shape parameters (C > 0, 0 < Delta < 1)
type Params struct {
	Ks    []int   `yaml:"ks" json:"ks"`
	RFs   []int   `yaml:"rfs" json:"rfs"`
	EF    int     `yaml:"ef" json:"ef"`
	C     float64 `yaml:"c" json:"c"`
	Delta float64 `yaml:"delta" json:"delta"`
}

// ClassRange is the half-open source index range [Start, End) of a class.
type ClassRange struct {
	Start, End int
}

// Len returns the number of symbols in the class.
func (r ClassRange) Len() int { return r.End - r.Start }

// DefaultRFs returns a repetition factor of 1 for every class.
func DefaultRFs(ks []int) []int {
	rfs := make([]int, len(ks))
	for i := range rfs {
		rfs[i] = 1
	}
	return rfs
}

// Validate reports the first violated constraint, wrapping ErrInvalidParameters.
func (p Params) Validate() error {
	if len(p.Ks) == 0 {
		return fmt.Errorf("%w: no protection classes", ErrInvalidParameters)
	}
	if len(p.RFs) != len(p.Ks) {
		return fmt.Errorf("%w: %d RFs for %d classes", ErrInvalidParameters, len(p.RFs), len(p.Ks))
	}
	for i, k := range p.Ks {
		if k <= 0 {
			return fmt.Errorf("%w: class %d has size %d", ErrInvalidParameters, i, k)
		}
		if p.RFs[i] < 1 {
			return fmt.Errorf("%w: class %d has repetition factor %d", ErrInvalidParameters, i, p.RFs[i])
		}
	}
	if p.EF < 1 {
		return fmt.Errorf("%w: expansion factor %d", ErrInvalidParameters, p.EF)
	}
	if !(p.C > 0) {
		return fmt.Errorf("%w: c=%v must be > 0", ErrInvalidParameters, p.C)
	}
	if !(p.Delta > 0 && p.Delta < 1) {
		return fmt.Errorf("%w: delta=%v outside (0,1)", ErrInvalidParameters, p.Delta)
	}
	return nil
}

// K returns the total number of source symbols.
func (p Params) K() int {
	k := 0
	for _, ki := range p.Ks {
		k += ki
	}
	return k
}

// ExpandedK returns the block size seen by the underlying LT code:
// EF * sum(K_i * RF_i).
func (p Params) ExpandedK() int {
	return p.EF * p.repeatedK()
}

func (p Params) repeatedK() int {
	k := 0
	for i, ki := range p.Ks {
		k += ki * p.RFs[i]
	}
	return k
}

// ClassRanges returns the source index range of every class, in order.
func (p Params) ClassRanges() []ClassRange {
	out := make([]ClassRange, len(p.Ks))
	off := 0
	for i, k := range p.Ks {
		out[i] = ClassRange{Start: off, End: off + k}
		off += k
	}
	return out
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	p.Ks = slices.Clone(p.Ks)
	p.RFs = slices.Clone(p.RFs)
	return p
}

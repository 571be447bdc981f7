package simulation

import (
	"errors"

	"github.com/ja7ad/uepsim/pkg/decoder"
)

var errStub = errors.New("stub decoder failure")

// fixedDecoder reports every symbol as recovered (or none of them) and
// optionally fails on the Run call number failAt (1-based).
type fixedDecoder struct {
	k       int
	recover bool
	failAt  int
	runs    int
	rows    int
}

func (d *fixedDecoder) Reset() { d.rows = 0 }

func (d *fixedDecoder) AddRow(row []int) error {
	if len(row) == 0 {
		return decoder.ErrMalformedRow
	}
	d.rows++
	return nil
}

func (d *fixedDecoder) Run() error {
	d.runs++
	if d.failAt > 0 && d.runs == d.failAt {
		return errStub
	}
	return nil
}

func (d *fixedDecoder) Recovered() []bool {
	out := make([]bool, d.k)
	for i := range out {
		out[i] = d.recover
	}
	return out
}

func alwaysRecover(k int) decoder.Decoder { return &fixedDecoder{k: k, recover: true} }

func neverRecover(k int) decoder.Decoder { return &fixedDecoder{k: k} }

func failingAt(n int) decoder.Factory {
	return func(k int) decoder.Decoder { return &fixedDecoder{k: k, recover: true, failAt: n} }
}

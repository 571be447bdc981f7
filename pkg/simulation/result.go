package simulation

import "slices"

// Result aggregates the blocks run by one engine, or the merge of several
// engines.
type Result struct {
	NBlocks int   `json:"nblocks"`
	N       int   `json:"n"` // transmissions per block
	Ks      []int `json:"ks"`

	ErrorCounts []int     `json:"error_counts"`
	ErrorRates  []float64 `json:"error_rates"`
	DropCount   int       `json:"drop_count"`
	DropRate    float64   `json:"drop_rate"`

	AvgRipple    float64 `json:"avg_ripple"`
	AvgEncodeSec float64 `json:"avg_encode_sec"`
	AvgDecodeSec float64 `json:"avg_decode_sec"`
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	c := *r
	c.Ks = slices.Clone(r.Ks)
	c.ErrorCounts = slices.Clone(r.ErrorCounts)
	c.ErrorRates = slices.Clone(r.ErrorRates)
	return &c
}

// TotalErrors returns the sum of the per-class error counts.
func (r *Result) TotalErrors() int {
	n := 0
	for _, e := range r.ErrorCounts {
		n += e
	}
	return n
}

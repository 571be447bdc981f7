package store

import (
	"time"

	"github.com/ja7ad/uepsim/pkg/simulation"
)

// Metadata describes how a pack was produced. Config.Overhead is unused;
// the swept values are in Overheads.
type Metadata struct {
	Config    simulation.Config `json:"config"`
	Overheads []float64         `json:"overheads"`
	Timestamp time.Time         `json:"timestamp"`
	Revision  string            `json:"revision,omitempty"`
}

// Point is the result of one overhead of a sweep.
type Point struct {
	Overhead float64            `json:"overhead"`
	Result   *simulation.Result `json:"result"`
}

// Pack is one saved sweep.
type Pack struct {
	Metadata Metadata `json:"metadata"`
	Points   []Point  `json:"points"`
}

// NewPack returns an empty pack for cfg stamped with the current time.
func NewPack(cfg simulation.Config, revision string) *Pack {
	return &Pack{
		Metadata: Metadata{
			Config:    cfg.Clone(),
			Timestamp: time.Now().UTC(),
			Revision:  revision,
		},
	}
}

// Add appends the result for one overhead.
func (p *Pack) Add(overhead float64, r *simulation.Result) {
	p.Metadata.Overheads = append(p.Metadata.Overheads, overhead)
	p.Points = append(p.Points, Point{Overhead: overhead, Result: r.Clone()})
}

package stats

import "errors"

// ErrInvalidParameters indicates that a confidence-interval request was
// malformed (n < 2, z outside [0,n] or gamma outside [0,1]).
var ErrInvalidParameters = errors.New("stats: invalid parameters")

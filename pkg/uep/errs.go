package uep

import "errors"

// ErrInvalidParameters indicates malformed UEP code parameters.
var ErrInvalidParameters = errors.New("uep: invalid parameters")

package channel

import "errors"

// ErrInvalidParameters indicates a loss or transition probability outside
// its valid range.
var ErrInvalidParameters = errors.New("channel: invalid parameters")

package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters indicates a malformed configuration. It is only
	// returned at construction time, never mid-run.
	ErrInvalidParameters = errors.New("simulation: invalid parameters")

	// ErrDecodeFailure indicates that the decoder rejected or failed on a block.
	ErrDecodeFailure = errors.New("simulation: decode failure")

	// ErrWorkerFailure indicates that a parallel worker failed; the whole
	// parallel run is discarded.
	ErrWorkerFailure = errors.New("simulation: worker failure")
)

// BlockError reports which block aborted an engine run.
type BlockError struct {
	Block int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s: block %d: %v", ErrDecodeFailure, e.Block, e.Err)
}

func (e *BlockError) Unwrap() []error { return []error{ErrDecodeFailure, e.Err} }

// WorkerError reports which worker aborted a parallel run.
type WorkerError struct {
	Worker int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s: worker %d: %v", ErrWorkerFailure, e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() []error { return []error{ErrWorkerFailure, e.Err} }

package store

import "errors"

var (
	ErrNotFound   = errors.New("store: pack not found")
	ErrInvalidKey = errors.New("store: invalid key")
)

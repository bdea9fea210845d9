package catalog

import "errors"

var (
	ErrUnknownFormat = errors.New("catalog: unknown file format")
	ErrUnknownKind   = errors.New("catalog: unknown value type")
	ErrInvalidEntry  = errors.New("catalog: invalid entry")
	ErrInvalidNumber = errors.New("catalog: invalid number")
)

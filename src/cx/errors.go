package cx

import "errors"

var (
	// ErrSchemaMismatch is returned when a frame's column set or index column set
	// differs from the schema locked by the first append
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrAmbiguousIndex is returned by loaders when the primary table carries more than one index
	ErrAmbiguousIndex = errors.New("ambiguous index: more than one index on table")
	// ErrStoreExists is returned when the target store already holds data
	// and neither deletion nor appending was requested
	ErrStoreExists    = errors.New("store already exists")
	ErrInvalidFrame   = errors.New("invalid frame")
	ErrTableNotFound  = errors.New("table not found")
	ErrClosed         = errors.New("dumper is closed")
	ErrInvalidOptions = errors.New("invalid options")
)

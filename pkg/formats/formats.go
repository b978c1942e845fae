// Package formats provides parsers for the Ragnarok Online map file
// family: GND (ground mesh), RSW (resource world / object placement)
// and GAT (ground altitude / walkability table). All multi-byte fields
// are little-endian. Parsers are pure: each decode owns a single cursor
// over the input buffer and shares no state, so independent buffers may
// be parsed concurrently from independent goroutines.
package formats

import "errors"

// Errors shared across the format family.
var (
	// ErrInvalidDimension indicates a declared grid size that is
	// non-positive or exceeds the sanity ceiling. Always fatal; defends
	// against corrupt files causing unbounded allocation.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidCount indicates a declared record count that is
	// negative or exceeds the sanity ceiling. Always fatal.
	ErrInvalidCount = errors.New("invalid count")
)

// maxRecordCount bounds every declared record count (textures,
// lightmaps, surfaces, world objects) before allocation.
const maxRecordCount = 1 << 20

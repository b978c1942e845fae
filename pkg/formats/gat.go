package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/reader"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
)

// maxGATDimension is the per-axis sanity ceiling. GAT grids are twice
// the GND grid per axis, so the ceiling is larger than the GND one.
const maxGATDimension = 4096

// GATCellType is the walkability type of a cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0 // normal walkable ground
	GATBlocked       GATCellType = 1 // cannot walk through
	GATWater         GATCellType = 2 // water
	GATWalkableWater GATCellType = 3 // shore/shallow water
	GATSnipeable     GATCellType = 4 // can attack over but not walk
	GATBlockedSnipe  GATCellType = 5 // blocked but can shoot over
)

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	switch t {
	case GATWalkable:
		return "Walkable"
	case GATBlocked:
		return "Blocked"
	case GATWater:
		return "Water"
	case GATWalkableWater:
		return "Walkable+Water"
	case GATSnipeable:
		return "Snipeable"
	case GATBlockedSnipe:
		return "Blocked+Snipe"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// IsWalkable reports whether the cell type allows walking.
func (t GATCellType) IsWalkable() bool {
	return t == GATWalkable || t == GATWalkableWater
}

// IsWater reports whether the cell contains water.
func (t GATCellType) IsWater() bool {
	return t == GATWater || t == GATWalkableWater
}

// IsSnipeable reports whether projectiles can pass over the cell.
func (t GATCellType) IsSnipeable() bool {
	return t == GATSnipeable || t == GATBlockedSnipe
}

// GATCell is one walkability grid cell: four corner heights in the
// same corner order as GND cells, plus the type flags.
type GATCell struct {
	Heights [4]float32 // [0]=BL, [1]=BR, [2]=TL, [3]=TR
	Type    GATCellType
}

// AverageHeight returns the mean of the four corner heights.
func (c *GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4
}

// GAT is a parsed walkability grid.
type GAT struct {
	Version float32 // validated, otherwise uninterpreted
	Width   int32
	Height  int32
	Cells   []GATCell // row-major, Width*Height entries
}

// Cell returns the cell at (x, y), or nil when out of bounds.
func (g *GAT) Cell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// IsWalkable reports whether the cell at (x, y) is walkable.
func (g *GAT) IsWalkable(x, y int) bool {
	cell := g.Cell(x, y)
	return cell != nil && cell.Type.IsWalkable()
}

// CountByType returns the number of cells per type.
func (g *GAT) CountByType() map[GATCellType]int {
	counts := make(map[GATCellType]int)
	for i := range g.Cells {
		counts[g.Cells[i].Type]++
	}
	return counts
}

// ParseGAT parses a GAT file from raw bytes. The grid is the whole
// point of the format, so any truncation is a hard error.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d-byte file", ErrTruncatedGATData, len(data))
	}
	if string(data[0:4]) != "GRAT" {
		return nil, ErrInvalidGATMagic
	}

	r := reader.New(data)
	if err := r.Skip(4); err != nil {
		return nil, err
	}

	gat := &GAT{}
	var err error
	if gat.Version, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if math.IsNaN(float64(gat.Version)) || math.IsInf(float64(gat.Version), 0) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedGATVersion, gat.Version)
	}

	if gat.Width, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading width: %w", err)
	}
	if gat.Height, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}
	if gat.Width <= 0 || gat.Height <= 0 || gat.Width > maxGATDimension || gat.Height > maxGATDimension {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimension, gat.Width, gat.Height)
	}

	cellCount := int(gat.Width) * int(gat.Height)
	gat.Cells = make([]GATCell, cellCount)
	for i := 0; i < cellCount; i++ {
		var cell GATCell
		if err := r.F32s(cell.Heights[:]); err != nil {
			return nil, fmt.Errorf("parsing cell %d: %w", i, err)
		}
		t, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("parsing cell %d type: %w", i, err)
		}
		cell.Type = GATCellType(t)
		gat.Cells[i] = cell
	}

	return gat, nil
}

// Encode serializes the grid back to the on-disk layout. For any GAT
// produced by ParseGAT, Encode reproduces the input bytes exactly.
func (g *GAT) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(16 + len(g.Cells)*20)
	buf.WriteString("GRAT")
	binary.Write(buf, binary.LittleEndian, g.Version)
	binary.Write(buf, binary.LittleEndian, g.Width)
	binary.Write(buf, binary.LittleEndian, g.Height)
	for i := range g.Cells {
		binary.Write(buf, binary.LittleEndian, g.Cells[i].Heights)
		binary.Write(buf, binary.LittleEndian, uint32(g.Cells[i].Type))
	}
	return buf.Bytes()
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

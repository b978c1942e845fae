package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildGAT assembles a synthetic GAT buffer with the given cell types.
// Heights are derived from the cell index so round-trip tests catch
// field transpositions.
func buildGAT(t *testing.T, width, height int32, types []GATCellType) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.WriteString("GRAT")
	binary.Write(buf, binary.LittleEndian, float32(1.2))
	binary.Write(buf, binary.LittleEndian, width)
	binary.Write(buf, binary.LittleEndian, height)
	for i, typ := range types {
		heights := [4]float32{float32(i), float32(i) + 0.25, float32(i) + 0.5, float32(i) + 0.75}
		binary.Write(buf, binary.LittleEndian, heights)
		binary.Write(buf, binary.LittleEndian, uint32(typ))
	}
	return buf.Bytes()
}

func TestParseGAT(t *testing.T) {
	data := buildGAT(t, 2, 2, []GATCellType{
		GATWalkable, GATBlocked,
		GATWater, GATWalkableWater,
	})

	gat, err := ParseGAT(data)
	if err != nil {
		t.Fatalf("ParseGAT() error: %v", err)
	}
	if gat.Width != 2 || gat.Height != 2 {
		t.Errorf("grid = %dx%d, want 2x2", gat.Width, gat.Height)
	}
	if gat.Version != 1.2 {
		t.Errorf("Version = %v, want 1.2", gat.Version)
	}
	if got := gat.Cell(1, 1).Type; got != GATWalkableWater {
		t.Errorf("Cell(1,1).Type = %v, want Walkable+Water", got)
	}
	if gat.Cell(0, 1).Heights != [4]float32{2, 2.25, 2.5, 2.75} {
		t.Errorf("Cell(0,1).Heights = %v", gat.Cell(0, 1).Heights)
	}
}

func TestParseGATBadMagic(t *testing.T) {
	data := buildGAT(t, 1, 1, []GATCellType{GATWalkable})
	copy(data[0:4], "GRGN")

	if _, err := ParseGAT(data); !errors.Is(err, ErrInvalidGATMagic) {
		t.Errorf("err = %v, want ErrInvalidGATMagic", err)
	}
}

func TestParseGATBadVersion(t *testing.T) {
	data := buildGAT(t, 1, 1, []GATCellType{GATWalkable})
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(float32(math.NaN())))

	if _, err := ParseGAT(data); !errors.Is(err, ErrUnsupportedGATVersion) {
		t.Errorf("err = %v, want ErrUnsupportedGATVersion", err)
	}
}

func TestParseGATTruncated(t *testing.T) {
	data := buildGAT(t, 2, 2, []GATCellType{
		GATWalkable, GATWalkable, GATWalkable, GATWalkable,
	})
	// The grid is mandatory; any truncation is a hard error.
	if _, err := ParseGAT(data[:len(data)-4]); err == nil {
		t.Error("ParseGAT() = nil error for truncated grid")
	}
}

func TestParseGATBadDimensions(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.WriteString("GRAT")
	binary.Write(buf, binary.LittleEndian, float32(1.2))
	binary.Write(buf, binary.LittleEndian, int32(-1))
	binary.Write(buf, binary.LittleEndian, int32(4))

	if _, err := ParseGAT(buf.Bytes()); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("err = %v, want ErrInvalidDimension", err)
	}
}

func TestGATEncodeRoundTrip(t *testing.T) {
	data := buildGAT(t, 3, 2, []GATCellType{
		GATWalkable, GATBlocked, GATWater,
		GATWalkableWater, GATSnipeable, GATBlockedSnipe,
	})

	gat, err := ParseGAT(data)
	if err != nil {
		t.Fatalf("ParseGAT() error: %v", err)
	}
	if got := gat.Encode(); !bytes.Equal(got, data) {
		t.Errorf("Encode() differs from input: %d vs %d bytes", len(got), len(data))
	}
}

func TestGATIsWalkable(t *testing.T) {
	data := buildGAT(t, 2, 1, []GATCellType{GATWalkable, GATBlocked})
	gat, err := ParseGAT(data)
	if err != nil {
		t.Fatal(err)
	}

	if !gat.IsWalkable(0, 0) {
		t.Error("IsWalkable(0,0) = false")
	}
	if gat.IsWalkable(1, 0) {
		t.Error("IsWalkable(1,0) = true for blocked cell")
	}
	if gat.IsWalkable(5, 5) {
		t.Error("IsWalkable(5,5) = true out of bounds")
	}
}

func TestGATCellTypeFlags(t *testing.T) {
	tests := []struct {
		typ       GATCellType
		walkable  bool
		water     bool
		snipeable bool
	}{
		{GATWalkable, true, false, false},
		{GATBlocked, false, false, false},
		{GATWater, false, true, false},
		{GATWalkableWater, true, true, false},
		{GATSnipeable, false, false, true},
		{GATBlockedSnipe, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			if got := tc.typ.IsWalkable(); got != tc.walkable {
				t.Errorf("IsWalkable() = %v, want %v", got, tc.walkable)
			}
			if got := tc.typ.IsWater(); got != tc.water {
				t.Errorf("IsWater() = %v, want %v", got, tc.water)
			}
			if got := tc.typ.IsSnipeable(); got != tc.snipeable {
				t.Errorf("IsSnipeable() = %v, want %v", got, tc.snipeable)
			}
		})
	}
}

package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/reader"
)

// GND format errors.
var (
	ErrInvalidGNDMagic       = errors.New("invalid GND magic: expected 'GRGN'")
	ErrUnsupportedGNDVersion = errors.New("unsupported GND version")
	ErrTruncatedGNDData      = errors.New("truncated GND data")
	ErrInvalidGNDSurfaceRef  = errors.New("surface index out of range")
)

// maxGNDDimension is the per-axis sanity ceiling for the cell grid.
// Retail maps top out around 512 tiles per side.
const maxGNDDimension = 1024

// defaultTileScale is the tile size used by version-0 files, which
// predate the explicit scale field.
const defaultTileScale = 10.0

// GNDVersion is the GND file version, stored as two bytes after the magic.
type GNDVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GNDVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether the version is >= major.minor.
func (v GNDVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// IsZero reports whether this is the oldest (pre-versioned) layout.
func (v GNDVersion) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

// gndLayout describes which fields a given version carries. The full
// version matrix is decided here, once per decode, so each threshold is
// auditable in isolation.
type gndLayout struct {
	legacyHeader bool // texture count before dimensions, no scale field
	hasLightmaps bool // lightmap header + blob present
	wideIndices  bool // 4-byte cell surface refs (2-byte + padding below)
	hasWater     bool // embedded water block after the cell grid
}

func gndLayoutFor(v GNDVersion) gndLayout {
	return gndLayout{
		legacyHeader: v.IsZero(),
		hasLightmaps: !v.IsZero(),
		wideIndices:  v.AtLeast(1, 6),
		hasWater:     v.AtLeast(1, 8),
	}
}

// GNDTexture is one texture table entry: the texture path and a
// display name, each stored as a 40-byte fixed field.
type GNDTexture struct {
	Path string
	Name string
}

// GNDSurface is a reusable UV+texture+lightmap+tint record referenced
// by index from cells. UV corner order matches cell corner order:
// [0]=bottom-left, [1]=bottom-right, [2]=top-left, [3]=top-right.
type GNDSurface struct {
	U          [4]float32
	V          [4]float32
	TextureID  int16 // -1 = no texture
	LightmapID uint16
	Color      [4]uint8 // stored B, G, R, A; kept in file order
}

// GNDCell is one terrain grid unit: four independent corner heights
// plus up to three surface references. Heights are positive-down, in
// corner order [0]=bottom-left, [1]=bottom-right, [2]=top-left,
// [3]=top-right. That order is load-bearing for wall inference between
// adjacent cells and must not be rearranged.
type GNDCell struct {
	Heights      [4]float32
	TopSurface   int32 // -1 = none
	EastSurface  int32 // wall shared with the cell at x+1, -1 = none
	SouthSurface int32 // wall shared with the cell at y+1, -1 = none
}

// GNDLightmaps holds the raw lightmap blob. Each entry is
// CellWidth*CellHeight shadow bytes followed by CellWidth*CellHeight*3
// RGB bytes; the two planes are NOT interleaved.
type GNDLightmaps struct {
	Count      int32
	CellWidth  int32
	CellHeight int32
	GridSize   int32 // per-tile subdivision, normally 1
	Data       []byte
}

// PixelsPerCell returns CellWidth*CellHeight.
func (l *GNDLightmaps) PixelsPerCell() int {
	return int(l.CellWidth) * int(l.CellHeight)
}

// entrySize is the byte size of one lightmap entry: one shadow plane
// plus three color planes.
func (l *GNDLightmaps) entrySize() int {
	return l.PixelsPerCell() * 4
}

// Shadow returns the per-pixel shadow/occlusion plane of entry i, or
// nil if i is out of range.
func (l *GNDLightmaps) Shadow(i int) []byte {
	if l == nil || i < 0 || i >= int(l.Count) {
		return nil
	}
	off := i * l.entrySize()
	return l.Data[off : off+l.PixelsPerCell()]
}

// Color returns the per-pixel RGB plane of entry i, or nil if i is out
// of range.
func (l *GNDLightmaps) Color(i int) []byte {
	if l == nil || i < 0 || i >= int(l.Count) {
		return nil
	}
	off := i*l.entrySize() + l.PixelsPerCell()
	return l.Data[off : off+l.PixelsPerCell()*3]
}

// GNDWater holds the water block embedded in newer GND versions.
type GNDWater struct {
	Level      float32
	Type       int32
	WaveHeight float32
	WaveSpeed  float32
	WavePitch  float32
	AnimSpeed  int32
}

// GND is a parsed ground file. The model is immutable after decode;
// the mesh builder treats it as read-only.
type GND struct {
	Version   GNDVersion
	Width     int32 // grid extent in tiles
	Height    int32
	Scale     float32 // world units per tile
	Textures  []GNDTexture
	Lightmaps *GNDLightmaps // nil when absent or truncated
	Surfaces  []GNDSurface
	Cells     []GNDCell // row-major, Width*Height entries
	Water     *GNDWater // nil when absent
}

// Cell returns the cell at (x, y), or nil when out of bounds. A nil
// result at grid edges is a normal condition, not an error.
func (g *GND) Cell(x, y int) *GNDCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) || len(g.Cells) == 0 {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// Surface returns the surface record for index id, or nil for -1 and
// out-of-range values.
func (g *GND) Surface(id int32) *GNDSurface {
	if id < 0 || int(id) >= len(g.Surfaces) {
		return nil
	}
	return &g.Surfaces[id]
}

// HeightRange returns the minimum and maximum corner height.
func (g *GND) HeightRange() (min, max float32) {
	if len(g.Cells) == 0 {
		return 0, 0
	}
	min = g.Cells[0].Heights[0]
	max = min
	for i := range g.Cells {
		for _, h := range g.Cells[i].Heights {
			if h < min {
				min = h
			}
			if h > max {
				max = h
			}
		}
	}
	return min, max
}

// ParseGND parses a GND file from raw bytes.
//
// Optional trailing sections degrade gracefully: if the buffer ends
// inside the texture table, lightmap blob, surface table or water
// block, the model parsed so far is returned with the truncated
// section absent. The cell grid is structurally required; truncation
// there is a hard error.
func ParseGND(data []byte) (*GND, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: %d-byte file", ErrTruncatedGNDData, len(data))
	}
	if string(data[0:4]) != "GRGN" {
		return nil, ErrInvalidGNDMagic
	}

	// Version is two bytes: major, minor.
	version := GNDVersion{Major: data[4], Minor: data[5]}
	if !version.IsZero() && (version.Major != 1 || version.Minor > 9) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGNDVersion, version)
	}
	layout := gndLayoutFor(version)

	r := reader.New(data)
	if err := r.Skip(6); err != nil {
		return nil, err
	}

	gnd := &GND{Version: version, Scale: defaultTileScale}

	// Header. The oldest layout puts the texture count first and has
	// no scale field.
	var textureCount int32
	var err error
	if layout.legacyHeader {
		if textureCount, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading texture count: %w", err)
		}
		if gnd.Width, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading width: %w", err)
		}
		if gnd.Height, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading height: %w", err)
		}
	} else {
		if gnd.Width, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading width: %w", err)
		}
		if gnd.Height, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading height: %w", err)
		}
		if gnd.Scale, err = r.F32(); err != nil {
			return nil, fmt.Errorf("reading tile scale: %w", err)
		}
		if textureCount, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading texture count: %w", err)
		}
	}

	if gnd.Width <= 0 || gnd.Height <= 0 || gnd.Width > maxGNDDimension || gnd.Height > maxGNDDimension {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimension, gnd.Width, gnd.Height)
	}
	if textureCount < 0 || textureCount > maxRecordCount {
		return nil, fmt.Errorf("%w: %d textures", ErrInvalidCount, textureCount)
	}

	// Texture table: 40-byte path + 40-byte display name per entry.
	for i := int32(0); i < textureCount; i++ {
		var tex GNDTexture
		if tex.Path, err = r.FixedString(40); err != nil {
			return gnd, nil
		}
		if tex.Name, err = r.FixedString(40); err != nil {
			return gnd, nil
		}
		gnd.Textures = append(gnd.Textures, tex)
	}

	if layout.hasLightmaps {
		lm, err := parseGNDLightmaps(r)
		if err != nil {
			if errors.Is(err, reader.ErrTruncated) {
				// Terrain and textures parsed so far are still useful.
				return gnd, nil
			}
			return nil, err
		}
		gnd.Lightmaps = lm
	}

	// Surface table.
	surfaceCount, err := r.I32()
	if err != nil {
		return gnd, nil
	}
	if surfaceCount < 0 || surfaceCount > maxRecordCount {
		return nil, fmt.Errorf("%w: %d surfaces", ErrInvalidCount, surfaceCount)
	}
	gnd.Surfaces = make([]GNDSurface, 0, surfaceCount)
	for i := int32(0); i < surfaceCount; i++ {
		surface, err := parseGNDSurface(r)
		if err != nil {
			// Keep the complete records; drop the partial one.
			return gnd, nil
		}
		gnd.Surfaces = append(gnd.Surfaces, surface)
	}

	// Cell grid: row-major, structurally required.
	cellCount := int(gnd.Width) * int(gnd.Height)
	gnd.Cells = make([]GNDCell, cellCount)
	for i := 0; i < cellCount; i++ {
		cell, err := parseGNDCell(r, layout)
		if err != nil {
			return nil, fmt.Errorf("parsing cell %d: %w", i, err)
		}
		if err := validateSurfaceRefs(&cell, int32(len(gnd.Surfaces))); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		gnd.Cells[i] = cell
	}

	if layout.hasWater {
		water, err := parseGNDWater(r)
		if err != nil {
			// Trailing optional block; the model is complete without it.
			return gnd, nil
		}
		gnd.Water = water
	}

	return gnd, nil
}

// parseGNDLightmaps reads the lightmap header and raw blob.
func parseGNDLightmaps(r *reader.Reader) (*GNDLightmaps, error) {
	lm := &GNDLightmaps{}
	var err error
	if lm.Count, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading lightmap count: %w", err)
	}
	if lm.CellWidth, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading lightmap cell width: %w", err)
	}
	if lm.CellHeight, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading lightmap cell height: %w", err)
	}
	if lm.GridSize, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading lightmap grid size: %w", err)
	}
	if lm.Count < 0 || lm.Count > maxRecordCount {
		return nil, fmt.Errorf("%w: %d lightmaps", ErrInvalidCount, lm.Count)
	}
	if lm.CellWidth <= 0 || lm.CellHeight <= 0 || lm.CellWidth > 256 || lm.CellHeight > 256 {
		return nil, fmt.Errorf("%w: lightmap cell %dx%d", ErrInvalidDimension, lm.CellWidth, lm.CellHeight)
	}
	blob, err := r.Bytes(int(lm.Count) * lm.entrySize())
	if err != nil {
		return nil, fmt.Errorf("reading lightmap blob: %w", err)
	}
	// Copy out of the input buffer so the model does not pin it.
	lm.Data = append([]byte(nil), blob...)
	if lm.Count == 0 {
		return nil, nil
	}
	return lm, nil
}

// parseGNDSurface reads one 40-byte surface record.
func parseGNDSurface(r *reader.Reader) (GNDSurface, error) {
	var s GNDSurface
	if err := r.F32s(s.U[:]); err != nil {
		return GNDSurface{}, fmt.Errorf("reading surface U: %w", err)
	}
	if err := r.F32s(s.V[:]); err != nil {
		return GNDSurface{}, fmt.Errorf("reading surface V: %w", err)
	}
	var err error
	if s.TextureID, err = r.I16(); err != nil {
		return GNDSurface{}, fmt.Errorf("reading surface texture id: %w", err)
	}
	if s.LightmapID, err = r.U16(); err != nil {
		return GNDSurface{}, fmt.Errorf("reading surface lightmap id: %w", err)
	}
	tint, err := r.Bytes(4)
	if err != nil {
		return GNDSurface{}, fmt.Errorf("reading surface tint: %w", err)
	}
	copy(s.Color[:], tint)
	return s, nil
}

// parseGNDCell reads one cell record. Legacy versions store the three
// surface refs as int16 followed by two padding bytes that must be
// consumed; newer versions store them as int32.
func parseGNDCell(r *reader.Reader, layout gndLayout) (GNDCell, error) {
	var c GNDCell
	if err := r.F32s(c.Heights[:]); err != nil {
		return GNDCell{}, fmt.Errorf("reading heights: %w", err)
	}
	if layout.wideIndices {
		refs := [3]*int32{&c.TopSurface, &c.EastSurface, &c.SouthSurface}
		for _, ref := range refs {
			v, err := r.I32()
			if err != nil {
				return GNDCell{}, fmt.Errorf("reading surface ref: %w", err)
			}
			*ref = v
		}
		return c, nil
	}
	refs := [3]*int32{&c.TopSurface, &c.EastSurface, &c.SouthSurface}
	for _, ref := range refs {
		v, err := r.I16()
		if err != nil {
			return GNDCell{}, fmt.Errorf("reading surface ref: %w", err)
		}
		*ref = int32(v)
	}
	if err := r.Skip(2); err != nil {
		return GNDCell{}, fmt.Errorf("reading cell padding: %w", err)
	}
	return c, nil
}

// validateSurfaceRefs enforces that every reference is -1 or a valid
// surface index.
func validateSurfaceRefs(c *GNDCell, surfaceCount int32) error {
	for _, ref := range [3]int32{c.TopSurface, c.EastSurface, c.SouthSurface} {
		if ref < -1 || ref >= surfaceCount {
			return fmt.Errorf("%w: %d not in [-1, %d)", ErrInvalidGNDSurfaceRef, ref, surfaceCount)
		}
	}
	return nil
}

// parseGNDWater reads the embedded water block.
func parseGNDWater(r *reader.Reader) (*GNDWater, error) {
	w := &GNDWater{}
	var err error
	if w.Level, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading water level: %w", err)
	}
	if w.Type, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading water type: %w", err)
	}
	if w.WaveHeight, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading wave height: %w", err)
	}
	if w.WaveSpeed, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading wave speed: %w", err)
	}
	if w.WavePitch, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading wave pitch: %w", err)
	}
	if w.AnimSpeed, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading water anim speed: %w", err)
	}
	return w, nil
}

// ParseGNDFile parses a GND file from disk.
func ParseGNDFile(path string) (*GND, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GND file: %w", err)
	}
	return ParseGND(data)
}

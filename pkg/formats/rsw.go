package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/reader"
)

// RSW format errors.
var (
	ErrInvalidRSWMagic       = errors.New("invalid RSW magic: expected 'GRSW'")
	ErrUnsupportedRSWVersion = errors.New("unsupported RSW version")
	ErrTruncatedRSWData      = errors.New("truncated RSW data")
	ErrUnknownObjectType     = errors.New("unknown RSW object type")
)

// RSWVersion is the RSW file version. Major and minor are stored as two
// separate bytes after the magic; reading them as one little-endian
// uint16 corrupts every subsequent offset, a classic mistake in older
// tools.
type RSWVersion struct {
	Major uint8
	Minor uint8
	Build uint32 // build number, v2.2+
}

// String returns the version as "Major.Minor" or "Major.Minor.Build".
func (v RSWVersion) String() string {
	if v.Build > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether the version is >= major.minor.
func (v RSWVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// rswLayout describes which header blocks a given version carries. The
// whole version matrix is decided here, once per decode.
type rswLayout struct {
	hasBuildNumber   bool // one extra byte after the version
	hasExtraInt      bool // opaque 4-byte field, preserved uninterpreted
	hasAuxPaths      bool // GAT + source path fields present
	hasWater         bool // water block (moved into GND at 2.6)
	hasWaterWaves    bool // water type/amplitude/speed/pitch
	hasWaterAnim     bool // water texture animation speed
	hasLight         bool // global lighting block
	hasShadowOpacity bool
	hasBounds        bool // ground view bounding box
	hasModelAnim     bool // model anim type/speed/block type fields
}

func rswLayoutFor(v RSWVersion) rswLayout {
	return rswLayout{
		hasBuildNumber:   v.AtLeast(2, 2),
		hasExtraInt:      v.AtLeast(2, 5),
		hasAuxPaths:      v.AtLeast(1, 4),
		hasWater:         v.AtLeast(1, 3) && !v.AtLeast(2, 6),
		hasWaterWaves:    v.AtLeast(1, 8),
		hasWaterAnim:     v.AtLeast(1, 9),
		hasLight:         v.AtLeast(1, 5),
		hasShadowOpacity: v.AtLeast(1, 7),
		hasBounds:        v.AtLeast(1, 6),
		hasModelAnim:     v.AtLeast(1, 3),
	}
}

// modelReservedByte reports whether model records carry the reserved
// byte introduced at 2.6 build 162. Its meaning is unconfirmed; the
// value is preserved verbatim.
func (l rswLayout) modelReservedByte(v RSWVersion) bool {
	return v.AtLeast(2, 6) && v.Build >= 162
}

// RSWObjectType is the 4-byte type tag preceding each world object.
type RSWObjectType int32

// The closed set of object record types.
const (
	RSWObjectModel  RSWObjectType = 1
	RSWObjectLight  RSWObjectType = 2
	RSWObjectSound  RSWObjectType = 3
	RSWObjectEffect RSWObjectType = 4
)

// String returns a human-readable object type name.
func (t RSWObjectType) String() string {
	switch t {
	case RSWObjectModel:
		return "Model"
	case RSWObjectLight:
		return "Light"
	case RSWObjectSound:
		return "Sound"
	case RSWObjectEffect:
		return "Effect"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// RSWWater holds water rendering settings for versions that embed them.
type RSWWater struct {
	Level      float32
	Type       int32
	WaveHeight float32
	WaveSpeed  float32
	WavePitch  float32
	AnimSpeed  int32
}

// RSWLight holds global lighting settings.
type RSWLight struct {
	Longitude int32 // sun horizontal angle, degrees
	Latitude  int32 // sun vertical angle, degrees
	Diffuse   [3]float32
	Ambient   [3]float32
	Opacity   float32 // shadow opacity, v1.7+
}

// RSWBounds is the ground view bounding box.
type RSWBounds struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// RSWModel is a mesh placement record. Position is stored relative to
// the map center; rotation is Euler degrees.
type RSWModel struct {
	Name      string
	AnimType  int32
	AnimSpeed float32
	BlockType int32
	Reserved  uint8 // opaque, v2.6 build 162+; preserved verbatim
	Filename  string
	NodeName  string
	Position  [3]float32
	Rotation  [3]float32 // degrees
	Scale     [3]float32
}

// RSWLightSource is a point light record. The ten reserved floats are
// not interpreted; they are preserved verbatim for round-trip fidelity.
type RSWLightSource struct {
	Name     string
	Position [3]float32
	Reserved [10]float32
	Color    [3]float32
	Range    float32
}

// RSWSound is a sound emitter record. The reserved fields are preserved
// verbatim and not interpreted.
type RSWSound struct {
	Name          string
	File          string
	Reserved      [2]float32
	Rotation      float32
	Scale         float32
	ReservedBytes [8]byte
	Position      [3]float32
	Volume        float32
	Width         int32 // trigger extent
	Height        int32
	Range         float32
}

// RSWEffect is an effect emitter record.
type RSWEffect struct {
	Name      string
	Position  [3]float32
	EffectID  int32
	EmitSpeed float32
	Param     [5]float32
}

// RSWObject is one world object: exactly one of the variant pointers is
// set according to Type. Objects are immutable once decoded.
type RSWObject struct {
	Type   RSWObjectType
	Model  *RSWModel
	Light  *RSWLightSource
	Sound  *RSWSound
	Effect *RSWEffect
}

// RSW is a parsed resource world file.
type RSW struct {
	Version  RSWVersion
	ExtraInt int32 // opaque header field, v2.5+; preserved verbatim
	IniFile  string
	GndFile  string
	GatFile  string // equals GndFile for versions before the field existed
	SrcFile  string
	Water    *RSWWater
	Light    *RSWLight
	Bounds   *RSWBounds
	Objects  []RSWObject
}

// Models returns all model placement records.
func (r *RSW) Models() []*RSWModel {
	var out []*RSWModel
	for i := range r.Objects {
		if r.Objects[i].Model != nil {
			out = append(out, r.Objects[i].Model)
		}
	}
	return out
}

// CountByType returns the number of objects per type tag.
func (r *RSW) CountByType() map[RSWObjectType]int {
	counts := make(map[RSWObjectType]int)
	for i := range r.Objects {
		counts[r.Objects[i].Type]++
	}
	return counts
}

// ParseRSW parses an RSW file from raw bytes.
//
// An unknown object type tag is a hard error: silently skipping it
// would misalign every following record, which is worse than stopping.
// The returned RSW still carries the objects decoded before the bad
// tag, so callers can inspect the partial result alongside the error.
func ParseRSW(data []byte) (*RSW, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: %d-byte file", ErrTruncatedRSWData, len(data))
	}
	if string(data[0:4]) != "GRSW" {
		return nil, ErrInvalidRSWMagic
	}

	version := RSWVersion{Major: data[4], Minor: data[5]}
	if version.Major < 1 || version.Major > 2 || (version.Major == 2 && version.Minor > 6) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSWVersion, version)
	}
	layout := rswLayoutFor(version)

	r := reader.New(data)
	if err := r.Skip(6); err != nil {
		return nil, err
	}

	rsw := &RSW{Version: version}
	var err error

	if layout.hasBuildNumber {
		b, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("reading build number: %w", err)
		}
		rsw.Version.Build = uint32(b)
	}
	if layout.hasExtraInt {
		if rsw.ExtraInt, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading reserved header int: %w", err)
		}
	}

	// Legacy path fields, 40 bytes each.
	if rsw.IniFile, err = r.FixedString(40); err != nil {
		return nil, fmt.Errorf("reading ini file name: %w", err)
	}
	if rsw.GndFile, err = r.FixedString(40); err != nil {
		return nil, fmt.Errorf("reading ground file name: %w", err)
	}
	if layout.hasAuxPaths {
		if rsw.GatFile, err = r.FixedString(40); err != nil {
			return nil, fmt.Errorf("reading walkability file name: %w", err)
		}
		if rsw.SrcFile, err = r.FixedString(40); err != nil {
			return nil, fmt.Errorf("reading source file name: %w", err)
		}
	} else {
		// The field did not exist yet; the ground file doubles as the
		// walkability reference.
		rsw.GatFile = rsw.GndFile
	}

	if layout.hasWater {
		water := &RSWWater{}
		if water.Level, err = r.F32(); err != nil {
			return nil, fmt.Errorf("reading water level: %w", err)
		}
		if layout.hasWaterWaves {
			if water.Type, err = r.I32(); err != nil {
				return nil, fmt.Errorf("reading water type: %w", err)
			}
			if water.WaveHeight, err = r.F32(); err != nil {
				return nil, fmt.Errorf("reading wave height: %w", err)
			}
			if water.WaveSpeed, err = r.F32(); err != nil {
				return nil, fmt.Errorf("reading wave speed: %w", err)
			}
			if water.WavePitch, err = r.F32(); err != nil {
				return nil, fmt.Errorf("reading wave pitch: %w", err)
			}
		}
		if layout.hasWaterAnim {
			if water.AnimSpeed, err = r.I32(); err != nil {
				return nil, fmt.Errorf("reading water anim speed: %w", err)
			}
		}
		rsw.Water = water
	}

	if layout.hasLight {
		light := &RSWLight{}
		if light.Longitude, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading light longitude: %w", err)
		}
		if light.Latitude, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading light latitude: %w", err)
		}
		if err = r.F32s(light.Diffuse[:]); err != nil {
			return nil, fmt.Errorf("reading diffuse color: %w", err)
		}
		if err = r.F32s(light.Ambient[:]); err != nil {
			return nil, fmt.Errorf("reading ambient color: %w", err)
		}
		if layout.hasShadowOpacity {
			if light.Opacity, err = r.F32(); err != nil {
				return nil, fmt.Errorf("reading shadow opacity: %w", err)
			}
		}
		rsw.Light = light
	}

	if layout.hasBounds {
		bounds := &RSWBounds{}
		fields := [4]*int32{&bounds.Left, &bounds.Top, &bounds.Right, &bounds.Bottom}
		for _, f := range fields {
			if *f, err = r.I32(); err != nil {
				return nil, fmt.Errorf("reading ground bounds: %w", err)
			}
		}
		rsw.Bounds = bounds
	}

	objectCount, err := r.I32()
	if err != nil {
		return nil, fmt.Errorf("reading object count: %w", err)
	}
	if objectCount < 0 || objectCount > maxRecordCount {
		return nil, fmt.Errorf("%w: %d objects", ErrInvalidCount, objectCount)
	}

	rsw.Objects = make([]RSWObject, 0, objectCount)
	for i := int32(0); i < objectCount; i++ {
		tagOffset := r.Offset()
		obj, err := parseRSWObject(r, rsw.Version, layout)
		if err != nil {
			// Objects decoded before the failure stay accessible.
			return rsw, fmt.Errorf("parsing object %d at offset %d: %w", i, tagOffset, err)
		}
		rsw.Objects = append(rsw.Objects, obj)
	}

	return rsw, nil
}

// parseRSWObject reads one type-tagged object record.
func parseRSWObject(r *reader.Reader, version RSWVersion, layout rswLayout) (RSWObject, error) {
	tag, err := r.I32()
	if err != nil {
		return RSWObject{}, fmt.Errorf("reading object type: %w", err)
	}

	obj := RSWObject{Type: RSWObjectType(tag)}
	switch obj.Type {
	case RSWObjectModel:
		obj.Model, err = parseRSWModel(r, version, layout)
	case RSWObjectLight:
		obj.Light, err = parseRSWLightSource(r)
	case RSWObjectSound:
		obj.Sound, err = parseRSWSound(r)
	case RSWObjectEffect:
		obj.Effect, err = parseRSWEffect(r)
	default:
		return RSWObject{}, fmt.Errorf("%w: %d", ErrUnknownObjectType, tag)
	}
	if err != nil {
		return RSWObject{}, err
	}
	return obj, nil
}

func parseRSWModel(r *reader.Reader, version RSWVersion, layout rswLayout) (*RSWModel, error) {
	m := &RSWModel{AnimSpeed: 1}
	var err error
	if m.Name, err = r.FixedString(40); err != nil {
		return nil, fmt.Errorf("reading model name: %w", err)
	}
	if layout.hasModelAnim {
		if m.AnimType, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading model anim type: %w", err)
		}
		if m.AnimSpeed, err = r.F32(); err != nil {
			return nil, fmt.Errorf("reading model anim speed: %w", err)
		}
		if m.BlockType, err = r.I32(); err != nil {
			return nil, fmt.Errorf("reading model block type: %w", err)
		}
	}
	if layout.modelReservedByte(version) {
		if m.Reserved, err = r.U8(); err != nil {
			return nil, fmt.Errorf("reading model reserved byte: %w", err)
		}
	}
	if m.Filename, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading model file name: %w", err)
	}
	if m.NodeName, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading model node name: %w", err)
	}
	if err = r.F32s(m.Position[:]); err != nil {
		return nil, fmt.Errorf("reading model position: %w", err)
	}
	if err = r.F32s(m.Rotation[:]); err != nil {
		return nil, fmt.Errorf("reading model rotation: %w", err)
	}
	if err = r.F32s(m.Scale[:]); err != nil {
		return nil, fmt.Errorf("reading model scale: %w", err)
	}
	return m, nil
}

func parseRSWLightSource(r *reader.Reader) (*RSWLightSource, error) {
	l := &RSWLightSource{}
	var err error
	if l.Name, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading light name: %w", err)
	}
	if err = r.F32s(l.Position[:]); err != nil {
		return nil, fmt.Errorf("reading light position: %w", err)
	}
	if err = r.F32s(l.Reserved[:]); err != nil {
		return nil, fmt.Errorf("reading light reserved block: %w", err)
	}
	if err = r.F32s(l.Color[:]); err != nil {
		return nil, fmt.Errorf("reading light color: %w", err)
	}
	if l.Range, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading light range: %w", err)
	}
	return l, nil
}

func parseRSWSound(r *reader.Reader) (*RSWSound, error) {
	s := &RSWSound{}
	var err error
	if s.Name, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading sound name: %w", err)
	}
	if s.File, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading sound file: %w", err)
	}
	if err = r.F32s(s.Reserved[:]); err != nil {
		return nil, fmt.Errorf("reading sound reserved floats: %w", err)
	}
	if s.Rotation, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading sound rotation: %w", err)
	}
	if s.Scale, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading sound scale: %w", err)
	}
	raw, err := r.Bytes(8)
	if err != nil {
		return nil, fmt.Errorf("reading sound reserved bytes: %w", err)
	}
	copy(s.ReservedBytes[:], raw)
	if err = r.F32s(s.Position[:]); err != nil {
		return nil, fmt.Errorf("reading sound position: %w", err)
	}
	if s.Volume, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading sound volume: %w", err)
	}
	if s.Width, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading sound trigger width: %w", err)
	}
	if s.Height, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading sound trigger height: %w", err)
	}
	if s.Range, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading sound range: %w", err)
	}
	return s, nil
}

func parseRSWEffect(r *reader.Reader) (*RSWEffect, error) {
	e := &RSWEffect{}
	var err error
	if e.Name, err = r.FixedString(80); err != nil {
		return nil, fmt.Errorf("reading effect name: %w", err)
	}
	if err = r.F32s(e.Position[:]); err != nil {
		return nil, fmt.Errorf("reading effect position: %w", err)
	}
	if e.EffectID, err = r.I32(); err != nil {
		return nil, fmt.Errorf("reading effect id: %w", err)
	}
	if e.EmitSpeed, err = r.F32(); err != nil {
		return nil, fmt.Errorf("reading effect emit speed: %w", err)
	}
	if err = r.F32s(e.Param[:]); err != nil {
		return nil, fmt.Errorf("reading effect params: %w", err)
	}
	return e, nil
}

// ParseRSWFile parses an RSW file from disk.
func ParseRSWFile(path string) (*RSW, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSW file: %w", err)
	}
	return ParseRSW(data)
}

package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// rswBuilder assembles synthetic RSW buffers for tests.
type rswBuilder struct {
	t   *testing.T
	buf bytes.Buffer
}

func newRSWBuilder(t *testing.T, major, minor uint8) *rswBuilder {
	t.Helper()
	b := &rswBuilder{t: t}
	b.buf.WriteString("GRSW")
	b.buf.WriteByte(major)
	b.buf.WriteByte(minor)
	return b
}

func (b *rswBuilder) write(v interface{}) *rswBuilder {
	b.t.Helper()
	if err := binary.Write(&b.buf, binary.LittleEndian, v); err != nil {
		b.t.Fatalf("building test RSW: %v", err)
	}
	return b
}

func (b *rswBuilder) i32(v int32) *rswBuilder   { return b.write(v) }
func (b *rswBuilder) f32(v float32) *rswBuilder { return b.write(v) }
func (b *rswBuilder) u8(v uint8) *rswBuilder    { return b.write(v) }

func (b *rswBuilder) raw(p []byte) *rswBuilder {
	b.buf.Write(p)
	return b
}

// str writes an n-byte fixed string field.
func (b *rswBuilder) str(n int, s string) *rswBuilder {
	field := make([]byte, n)
	copy(field, s)
	b.buf.Write(field)
	return b
}

func (b *rswBuilder) f32s(vs ...float32) *rswBuilder {
	for _, v := range vs {
		b.f32(v)
	}
	return b
}

// paths writes the four 40-byte path fields of v1.4+.
func (b *rswBuilder) paths(ini, gnd, gat, src string) *rswBuilder {
	return b.str(40, ini).str(40, gnd).str(40, gat).str(40, src)
}

// water19 writes the full water block of v1.9.
func (b *rswBuilder) water19(level float32) *rswBuilder {
	return b.f32(level).i32(1).f32(1).f32(2).f32(50).i32(3)
}

// light17 writes the lighting block with shadow opacity.
func (b *rswBuilder) light17(longitude, latitude int32) *rswBuilder {
	return b.i32(longitude).i32(latitude).
		f32s(1, 1, 1).f32s(0.3, 0.3, 0.3).f32(0.5)
}

func (b *rswBuilder) bounds(l, t, r, bt int32) *rswBuilder {
	return b.i32(l).i32(t).i32(r).i32(bt)
}

// model19 writes a model record in the v1.3+ layout (anim fields, no
// reserved byte).
func (b *rswBuilder) model19(name, filename string) *rswBuilder {
	return b.i32(int32(RSWObjectModel)).
		str(40, name).
		i32(0).f32(1).i32(0). // anim type, anim speed, block type
		str(80, filename).str(80, "root").
		f32s(10, -5, 20).f32s(0, 90, 0).f32s(1, 1, 1)
}

func (b *rswBuilder) lightSource(name string) *rswBuilder {
	b.i32(int32(RSWObjectLight)).str(80, name).f32s(1, 2, 3)
	for i := 0; i < 10; i++ {
		b.f32(0)
	}
	return b.f32s(1, 0.5, 0.25).f32(80)
}

func (b *rswBuilder) sound(name, file string) *rswBuilder {
	return b.i32(int32(RSWObjectSound)).
		str(80, name).str(80, file).
		f32s(0, 0).f32(0).f32(1). // reserved, rotation, scale
		raw(make([]byte, 8)).
		f32s(4, 5, 6).f32(0.8).i32(2).i32(2).f32(120)
}

func (b *rswBuilder) effect(name string, id int32) *rswBuilder {
	return b.i32(int32(RSWObjectEffect)).
		str(80, name).f32s(7, 8, 9).
		i32(id).f32(4).f32s(0, 0, 0, 0, 0)
}

func (b *rswBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func TestParseRSWFull(t *testing.T) {
	data := newRSWBuilder(t, 1, 9).
		paths("map.ini", "map.gnd", "map.gat", "map.rsw").
		water19(25).
		light17(45, 30).
		bounds(-200, -200, 200, 200).
		i32(4).
		model19("tree01", "model\\tree01.rsm").
		lightSource("lamp").
		sound("amb", "wav\\wind.wav").
		effect("torch", 99).
		bytes()

	rsw, err := ParseRSW(data)
	if err != nil {
		t.Fatalf("ParseRSW() error: %v", err)
	}

	if got := rsw.Version.String(); got != "1.9" {
		t.Errorf("Version = %s, want 1.9", got)
	}
	if rsw.GndFile != "map.gnd" || rsw.GatFile != "map.gat" {
		t.Errorf("paths = %q / %q", rsw.GndFile, rsw.GatFile)
	}
	if rsw.Water == nil || rsw.Water.Level != 25 || rsw.Water.AnimSpeed != 3 {
		t.Errorf("Water = %+v", rsw.Water)
	}
	if rsw.Light == nil || rsw.Light.Longitude != 45 || rsw.Light.Opacity != 0.5 {
		t.Errorf("Light = %+v", rsw.Light)
	}
	if rsw.Bounds == nil || rsw.Bounds.Left != -200 || rsw.Bounds.Bottom != 200 {
		t.Errorf("Bounds = %+v", rsw.Bounds)
	}
	if len(rsw.Objects) != 4 {
		t.Fatalf("Objects = %d, want 4", len(rsw.Objects))
	}

	model := rsw.Objects[0].Model
	if model == nil || model.Name != "tree01" || model.Filename != "model\\tree01.rsm" {
		t.Errorf("Model = %+v", model)
	}
	if model.Position != [3]float32{10, -5, 20} || model.Rotation != [3]float32{0, 90, 0} {
		t.Errorf("Model placement = %v / %v", model.Position, model.Rotation)
	}
	light := rsw.Objects[1].Light
	if light == nil || light.Name != "lamp" || light.Range != 80 {
		t.Errorf("Light source = %+v", light)
	}
	sound := rsw.Objects[2].Sound
	if sound == nil || sound.File != "wav\\wind.wav" || sound.Range != 120 {
		t.Errorf("Sound = %+v", sound)
	}
	effect := rsw.Objects[3].Effect
	if effect == nil || effect.EffectID != 99 || effect.EmitSpeed != 4 {
		t.Errorf("Effect = %+v", effect)
	}

	counts := rsw.CountByType()
	for _, typ := range []RSWObjectType{RSWObjectModel, RSWObjectLight, RSWObjectSound, RSWObjectEffect} {
		if counts[typ] != 1 {
			t.Errorf("CountByType()[%s] = %d, want 1", typ, counts[typ])
		}
	}
	if models := rsw.Models(); len(models) != 1 || models[0].Name != "tree01" {
		t.Errorf("Models() = %+v", models)
	}
}

func TestParseRSWBadMagic(t *testing.T) {
	data := []byte("XXXW\x01\x09")
	if _, err := ParseRSW(data); !errors.Is(err, ErrInvalidRSWMagic) {
		t.Errorf("err = %v, want ErrInvalidRSWMagic", err)
	}
}

func TestParseRSWUnsupportedVersion(t *testing.T) {
	for _, v := range [][2]uint8{{3, 0}, {0, 9}, {2, 7}} {
		data := []byte{'G', 'R', 'S', 'W', v[0], v[1]}
		if _, err := ParseRSW(data); !errors.Is(err, ErrUnsupportedRSWVersion) {
			t.Errorf("version %d.%d: err = %v, want ErrUnsupportedRSWVersion", v[0], v[1], err)
		}
	}
}

func TestParseRSWLegacyLayout(t *testing.T) {
	// v1.2: no aux paths, no water, no light, no bounds, models without
	// anim fields.
	b := newRSWBuilder(t, 1, 2).
		str(40, "old.ini").str(40, "old.gnd").
		i32(1).
		i32(int32(RSWObjectModel)).
		str(40, "rock").
		str(80, "model\\rock.rsm").str(80, "root").
		f32s(1, 2, 3).f32s(0, 0, 0).f32s(1, 1, 1)

	rsw, err := ParseRSW(b.bytes())
	if err != nil {
		t.Fatalf("ParseRSW() error: %v", err)
	}
	if rsw.GatFile != "old.gnd" {
		t.Errorf("GatFile = %q, want ground file fallback", rsw.GatFile)
	}
	if rsw.Water != nil || rsw.Light != nil || rsw.Bounds != nil {
		t.Errorf("optional blocks set for 1.2: %+v %+v %+v", rsw.Water, rsw.Light, rsw.Bounds)
	}
	model := rsw.Objects[0].Model
	if model == nil || model.Name != "rock" {
		t.Fatalf("Model = %+v", model)
	}
	// Absent anim fields take defaults.
	if model.AnimType != 0 || model.AnimSpeed != 1 {
		t.Errorf("anim defaults = %d / %v", model.AnimType, model.AnimSpeed)
	}
}

func TestParseRSWBuildNumber(t *testing.T) {
	data := newRSWBuilder(t, 2, 2).
		u8(5). // build number
		paths("a.ini", "a.gnd", "a.gat", "a.rsw").
		water19(0).
		light17(0, 0).
		bounds(0, 0, 0, 0).
		i32(0).
		bytes()

	rsw, err := ParseRSW(data)
	if err != nil {
		t.Fatalf("ParseRSW() error: %v", err)
	}
	if rsw.Version.Build != 5 {
		t.Errorf("Build = %d, want 5", rsw.Version.Build)
	}
	if got := rsw.Version.String(); got != "2.2.5" {
		t.Errorf("Version = %s, want 2.2.5", got)
	}
}

func TestParseRSWExtraHeaderInt(t *testing.T) {
	data := newRSWBuilder(t, 2, 5).
		u8(1).
		i32(0x1234). // opaque header field
		paths("a.ini", "a.gnd", "a.gat", "a.rsw").
		water19(0).
		light17(0, 0).
		bounds(0, 0, 0, 0).
		i32(0).
		bytes()

	rsw, err := ParseRSW(data)
	if err != nil {
		t.Fatalf("ParseRSW() error: %v", err)
	}
	if rsw.ExtraInt != 0x1234 {
		t.Errorf("ExtraInt = %#x, want 0x1234", rsw.ExtraInt)
	}
}

func TestParseRSWModernNoWater(t *testing.T) {
	// From 2.6 the water block lives in the GND file instead. Build 162
	// adds a reserved byte to model records.
	data := newRSWBuilder(t, 2, 6).
		u8(162).
		i32(0).
		paths("a.ini", "a.gnd", "a.gat", "a.rsw").
		light17(0, 0).
		bounds(0, 0, 0, 0).
		i32(1).
		i32(int32(RSWObjectModel)).
		str(40, "tree").
		i32(0).f32(1).i32(0).
		u8(0x7F). // reserved byte
		str(80, "model\\tree.rsm").str(80, "root").
		f32s(0, 0, 0).f32s(0, 0, 0).f32s(1, 1, 1).
		bytes()

	rsw, err := ParseRSW(data)
	if err != nil {
		t.Fatalf("ParseRSW() error: %v", err)
	}
	if rsw.Water != nil {
		t.Errorf("Water = %+v, want nil for 2.6", rsw.Water)
	}
	model := rsw.Objects[0].Model
	if model == nil || model.Reserved != 0x7F {
		t.Errorf("Model = %+v, want reserved byte 0x7F", model)
	}
}

func TestParseRSWUnknownObjectType(t *testing.T) {
	b := newRSWBuilder(t, 1, 9).
		paths("a.ini", "a.gnd", "a.gat", "a.rsw").
		water19(0).
		light17(0, 0).
		bounds(0, 0, 0, 0).
		i32(2).
		effect("valid", 1)
	badTagOffset := len(b.bytes())
	b.i32(7).raw(make([]byte, 16)) // bogus type tag

	rsw, err := ParseRSW(b.bytes())
	if !errors.Is(err, ErrUnknownObjectType) {
		t.Fatalf("err = %v, want ErrUnknownObjectType", err)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("offset %d", badTagOffset)) {
		t.Errorf("err = %v, want tag offset %d in message", err, badTagOffset)
	}
	// Objects decoded before the bad tag stay accessible.
	if rsw == nil || len(rsw.Objects) != 1 || rsw.Objects[0].Effect == nil {
		t.Errorf("partial Objects = %+v", rsw)
	}
}

func TestParseRSWTruncatedObject(t *testing.T) {
	b := newRSWBuilder(t, 1, 9).
		paths("a.ini", "a.gnd", "a.gat", "a.rsw").
		water19(0).
		light17(0, 0).
		bounds(0, 0, 0, 0).
		i32(1).
		i32(int32(RSWObjectModel)).
		str(40, "cut")
	// Record ends mid-object.

	rsw, err := ParseRSW(b.bytes())
	if err == nil {
		t.Fatal("ParseRSW() = nil error, want truncation error")
	}
	if rsw == nil || len(rsw.Objects) != 0 {
		t.Errorf("partial = %+v", rsw)
	}
}

package reader

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	data := []byte{
		0x2A,       // u8
		0x34, 0x12, // u16
		0xFE, 0xFF, // i16 = -2
		0x78, 0x56, 0x34, 0x12, // i32
	}
	r := New(data)

	if v, err := r.U8(); err != nil || v != 0x2A {
		t.Errorf("U8() = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x1234 {
		t.Errorf("U16() = %v, %v", v, err)
	}
	if v, err := r.I16(); err != nil || v != -2 {
		t.Errorf("I16() = %v, %v", v, err)
	}
	if v, err := r.I32(); err != nil || v != 0x12345678 {
		t.Errorf("I32() = %v, %v", v, err)
	}
	if r.Offset() != len(data) {
		t.Errorf("Offset() = %d, want %d", r.Offset(), len(data))
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", r.Remaining())
	}
}

func TestReaderF32(t *testing.T) {
	bits := math.Float32bits(10.0)
	data := []byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
	}
	r := New(data)
	v, err := r.F32()
	if err != nil {
		t.Fatalf("F32() error: %v", err)
	}
	if v != 10.0 {
		t.Errorf("F32() = %v, want 10.0", v)
	}
}

func TestReaderTruncation(t *testing.T) {
	r := New([]byte{1, 2})

	if _, err := r.I32(); !errors.Is(err, ErrTruncated) {
		t.Errorf("I32() on short buffer: err = %v, want ErrTruncated", err)
	}
	// A failed read must not advance the cursor.
	if r.Offset() != 0 {
		t.Errorf("Offset() after failed read = %d, want 0", r.Offset())
	}
	// Error must carry the offset for diagnostics.
	if _, err := r.Bytes(10); err == nil || !strings.Contains(err.Error(), "offset 0") {
		t.Errorf("Bytes(10) error = %v, want offset in message", err)
	}

	// Partial reads still work.
	if v, err := r.U16(); err != nil || v != 0x0201 {
		t.Errorf("U16() = %v, %v", v, err)
	}
}

func TestReaderSkip(t *testing.T) {
	r := New([]byte{1, 2, 3, 4})
	if err := r.Skip(3); err != nil {
		t.Fatalf("Skip(3) error: %v", err)
	}
	if r.Offset() != 3 {
		t.Errorf("Offset() = %d, want 3", r.Offset())
	}
	if err := r.Skip(2); !errors.Is(err, ErrTruncated) {
		t.Errorf("Skip(2) past end: err = %v, want ErrTruncated", err)
	}
}

func TestReaderFixedString(t *testing.T) {
	field := make([]byte, 8)
	copy(field, "abc\x00def")
	r := New(field)

	s, err := r.FixedString(8)
	if err != nil {
		t.Fatalf("FixedString() error: %v", err)
	}
	if s != "abc" {
		t.Errorf("FixedString() = %q, want %q", s, "abc")
	}
	// The full field width is consumed regardless of the terminator.
	if r.Offset() != 8 {
		t.Errorf("Offset() = %d, want 8", r.Offset())
	}
}

func TestReaderFixedStringLegacyCodePage(t *testing.T) {
	// "한" in EUC-KR.
	field := []byte{0xC7, 0xD1, 0x00, 0x00}
	r := New(field)

	s, err := r.FixedString(4)
	if err != nil {
		t.Fatalf("FixedString() error: %v", err)
	}
	if s != "한" {
		t.Errorf("FixedString() = %q, want %q", s, "한")
	}
}

func TestReaderNoTerminator(t *testing.T) {
	r := New([]byte("abcd"))
	s, err := r.FixedString(4)
	if err != nil {
		t.Fatalf("FixedString() error: %v", err)
	}
	if s != "abcd" {
		t.Errorf("FixedString() = %q, want %q", s, "abcd")
	}
}

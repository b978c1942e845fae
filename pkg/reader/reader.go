// Package reader provides a bounds-checked cursor over an immutable byte
// buffer. Every read either advances the cursor and returns a value, or
// fails with ErrTruncated; no read ever touches memory past the buffer.
package reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/pkg/encoding"
)

// ErrTruncated is returned when a read would pass the end of the buffer.
var ErrTruncated = errors.New("truncated data")

// Reader is a positional cursor over a byte slice. The zero value is an
// empty reader; use New for a useful one. Reader holds no state beyond
// the buffer and the position, so independent Readers are safe to use
// from independent goroutines.
type Reader struct {
	data []byte
	off  int
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current byte offset.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// need checks that n more bytes are available.
func (r *Reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncated, n, r.off, len(r.data)-r.off)
	}
	return nil
}

// Bytes reads n raw bytes. The returned slice aliases the underlying
// buffer and must not be modified.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// I16 reads a little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE 754 float32 via raw bit reinterpretation.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// F32s reads n consecutive float32 values.
func (r *Reader) F32s(dst []float32) error {
	for i := range dst {
		v, err := r.F32()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// FixedString reads a fixed-width, null-terminated string field and
// decodes it from the legacy code page. The field always consumes
// exactly width bytes regardless of where the terminator falls.
func (r *Reader) FixedString(width int) (string, error) {
	b, err := r.Bytes(width)
	if err != nil {
		return "", err
	}
	return encoding.DecodeFixed(b), nil
}

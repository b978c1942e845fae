// Package encoding handles the legacy code page used by Ragnarok Online
// file formats. Map files store names and paths as fixed-width,
// null-terminated EUC-KR byte fields.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Decode converts EUC-KR bytes to a UTF-8 string. If the bytes do not
// form valid EUC-KR, they are passed through unchanged so no information
// is lost on already-ASCII or corrupt names.
func Decode(data []byte) string {
	decoder := korean.EUCKR.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// DecodeFixed decodes a fixed-width field: the content ends at the first
// null byte, or at the field width if no null is present.
func DecodeFixed(data []byte) string {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	return Decode(data)
}

// Encode converts a UTF-8 string to EUC-KR bytes. Strings that cannot be
// represented are returned as raw UTF-8 bytes.
func Encode(s string) []byte {
	encoder := korean.EUCKR.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// EncodeFixed encodes a string into a null-padded field of the given width.
// Content longer than the field is truncated.
func EncodeFixed(s string, width int) []byte {
	field := make([]byte, width)
	copy(field, Encode(s))
	return field
}

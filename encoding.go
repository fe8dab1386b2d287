package fileutil

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Encoding names the text encoding used when reading or writing a file.
type Encoding string

const (
	// UTF8 is the encoding every helper in this package uses.
	UTF8  Encoding = "utf8"
	UTF16 Encoding = "utf16"
	ASCII Encoding = "ascii"
)

// Decode converts raw file bytes to a string. A leading byte order mark is
// dropped.
func (e Encoding) Decode(data []byte) (string, error) {
	switch e {
	case UTF8, "":
		if !utf8.Valid(data) {
			return "", ErrInvalidEncoding
		}
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return string(out), nil
	case UTF16:
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return string(out), nil
	case ASCII:
		for _, b := range data {
			if b >= utf8.RuneSelf {
				return "", ErrInvalidEncoding
			}
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: encoding %q", ErrNotSupported, string(e))
	}
}

// Encode converts s to the bytes stored on disk. No byte order mark is
// written.
func (e Encoding) Encode(s string) ([]byte, error) {
	switch e {
	case UTF8, "":
		if !utf8.ValidString(s) {
			return nil, ErrInvalidEncoding
		}
		return []byte(s), nil
	case UTF16:
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return out, nil
	case ASCII:
		for i := 0; i < len(s); i++ {
			if s[i] >= utf8.RuneSelf {
				return nil, ErrInvalidEncoding
			}
		}
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrNotSupported, string(e))
	}
}

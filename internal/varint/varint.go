// Package varint decodes LZ4's "0xF continuation" variable-length integer,
// used to extend the 4-bit literal-length and match-length fields of a
// block token.
package varint

import "errors"

// ErrIncompleteData is returned when the byte stream ends while the last
// continuation byte consumed was 0xFF — the length could not be fully
// decoded. The accumulated length is still returned so callers can decide
// whether a partial read is useful.
var ErrIncompleteData = errors.New("varint: incomplete data")

// Decode extends a 4-bit token nibble n into a full length by reading
// continuation bytes from src. It returns the decoded length and the
// number of bytes of src consumed.
//
// If n < 15 the nibble is the length and no bytes are consumed. Otherwise
// each byte of src is added to the running length until a byte other than
// 0xFF is read (inclusive) or src is exhausted.
func Decode(n byte, src []byte) (length int, consumed int, err error) {
	if n < 15 {
		return int(n), 0, nil
	}

	length = 15
	for consumed < len(src) {
		b := src[consumed]
		consumed++
		length += int(b)
		if b != 0xFF {
			return length, consumed, nil
		}
	}
	return length, consumed, ErrIncompleteData
}

// Encode is the inverse of Decode, used by internal/testencoder. It
// returns the token nibble and the continuation bytes to append after the
// token byte.
func Encode(length int) (nibble byte, continuation []byte) {
	if length < 15 {
		return byte(length), nil
	}

	remaining := length - 15
	for remaining >= 0xFF {
		continuation = append(continuation, 0xFF)
		remaining -= 0xFF
	}
	continuation = append(continuation, byte(remaining))
	return 15, continuation
}

// Package transcode converts UTF-16 and UTF-32 code units to UTF-8 at
// record-writing time.
//
// Both encodings get a size-only pass and a write pass over the same
// single forward scan, so a caller can learn the exact encoded length
// before any byte is produced. Malformed input is never rejected:
// unmatched surrogates and out-of-range code points are emitted as the
// UTF-8 byte pattern implied by their raw numeric value. Tracing must
// not fail or silently lose a malformed value — it should remain visible
// for debugging.
package transcode

import "encoding/binary"

// UTF16Size returns the number of UTF-8 bytes needed to transcode units,
// a little-endian UTF-16 code unit buffer. Valid surrogate pairs combine
// into one 4-byte sequence; unmatched surrogates encode as 3 bytes.
func UTF16Size(units []byte) int {
	n := len(units) / 2
	size := 0
	for i := 0; i != n; {
		v := uint32(binary.LittleEndian.Uint16(units[i*2:]))
		i++
		switch {
		case v < 0x80:
			size++
		case v < 0x800:
			size += 2
		case 0xd800 <= v && v < 0xdc00 && i != n && isLowSurrogate(units, i):
			// Valid surrogate pair.
			i++
			size += 4
		default:
			size += 3
		}
	}
	return size
}

// UTF16 transcodes units into dst and returns the number of bytes
// written. It stops before any sequence that would not fit; it never
// writes past len(dst). Callers detect a short write by comparing the
// result to UTF16Size.
func UTF16(units []byte, dst []byte) int {
	n := len(units) / 2
	out := 0
	for i := 0; i != n; {
		v := uint32(binary.LittleEndian.Uint16(units[i*2:]))
		i++
		switch {
		case v < 0x80:
			if out == len(dst) {
				return out
			}
			dst[out] = byte(v)
			out++
		case v < 0x800:
			if out+1 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>6) | 0xc0
			dst[out+1] = byte(v&0x3f) | 0x80
			out += 2
		case 0xd800 <= v && v < 0xdc00 && i != n && isLowSurrogate(units, i):
			if out+3 >= len(dst) {
				return out
			}
			low := uint32(binary.LittleEndian.Uint16(units[i*2:]))
			i++
			v = 0x10000 + ((v-0xd800)<<10 | (low - 0xdc00))
			dst[out] = byte(v>>18) | 0xf0
			dst[out+1] = byte(v>>12&0x3f) | 0x80
			dst[out+2] = byte(v>>6&0x3f) | 0x80
			dst[out+3] = byte(v&0x3f) | 0x80
			out += 4
		default:
			if out+2 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>12) | 0xe0
			dst[out+1] = byte(v>>6&0x3f) | 0x80
			dst[out+2] = byte(v&0x3f) | 0x80
			out += 3
		}
	}
	return out
}

func isLowSurrogate(units []byte, i int) bool {
	v := binary.LittleEndian.Uint16(units[i*2:])
	return 0xdc00 <= v && v < 0xe000
}

// UTF32Size returns the number of UTF-8 bytes needed to transcode units,
// a little-endian UTF-32 code unit buffer. Values above the Unicode
// range encode as the 4- to 7-byte pattern implied by their numeric
// value.
func UTF32Size(units []byte) int {
	n := len(units) / 4
	size := 0
	for i := 0; i != n; i++ {
		v := binary.LittleEndian.Uint32(units[i*4:])
		switch {
		case v < 0x80:
			size++
		case v < 0x800:
			size += 2
		case v < 0x10000:
			size += 3
		case v < 0x200000:
			size += 4
		case v < 0x4000000:
			size += 5
		case v < 0x80000000:
			size += 6
		default:
			size += 7
		}
	}
	return size
}

// UTF32 transcodes units into dst and returns the number of bytes
// written, with the same bounds contract as UTF16.
func UTF32(units []byte, dst []byte) int {
	n := len(units) / 4
	out := 0
	for i := 0; i != n; i++ {
		v := binary.LittleEndian.Uint32(units[i*4:])
		switch {
		case v < 0x80:
			if out == len(dst) {
				return out
			}
			dst[out] = byte(v)
			out++
		case v < 0x800:
			if out+1 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>6) | 0xc0
			dst[out+1] = byte(v&0x3f) | 0x80
			out += 2
		case v < 0x10000:
			if out+2 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>12) | 0xe0
			dst[out+1] = byte(v>>6&0x3f) | 0x80
			dst[out+2] = byte(v&0x3f) | 0x80
			out += 3
		case v < 0x200000:
			if out+3 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>18) | 0xf0
			dst[out+1] = byte(v>>12&0x3f) | 0x80
			dst[out+2] = byte(v>>6&0x3f) | 0x80
			dst[out+3] = byte(v&0x3f) | 0x80
			out += 4
		case v < 0x4000000:
			if out+4 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>24) | 0xf8
			dst[out+1] = byte(v>>18&0x3f) | 0x80
			dst[out+2] = byte(v>>12&0x3f) | 0x80
			dst[out+3] = byte(v>>6&0x3f) | 0x80
			dst[out+4] = byte(v&0x3f) | 0x80
			out += 5
		case v < 0x80000000:
			if out+5 >= len(dst) {
				return out
			}
			dst[out] = byte(v>>30) | 0xfc
			dst[out+1] = byte(v>>24&0x3f) | 0x80
			dst[out+2] = byte(v>>18&0x3f) | 0x80
			dst[out+3] = byte(v>>12&0x3f) | 0x80
			dst[out+4] = byte(v>>6&0x3f) | 0x80
			dst[out+5] = byte(v&0x3f) | 0x80
			out += 6
		default:
			if out+6 >= len(dst) {
				return out
			}
			dst[out] = 0xfe
			dst[out+1] = byte(v>>30&0x3f) | 0x80
			dst[out+2] = byte(v>>24&0x3f) | 0x80
			dst[out+3] = byte(v>>18&0x3f) | 0x80
			dst[out+4] = byte(v>>12&0x3f) | 0x80
			dst[out+5] = byte(v>>6&0x3f) | 0x80
			dst[out+6] = byte(v&0x3f) | 0x80
			out += 7
		}
	}
	return out
}

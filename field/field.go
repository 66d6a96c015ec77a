package field

import (
	"encoding/binary"
	"math"
)

// Descriptor describes one encodable value for a single write call.
//
// Data is a borrowed read-only view: it must stay valid for the duration
// of the call and is never retained. Descriptors own nothing and must not
// be shared across concurrent write calls — the planner caches each
// transcoded field's UTF-8 length in FilterLength, mutating the
// descriptor in place.
type Descriptor struct {
	// Data holds the field's source bytes. For transcoded kinds these
	// are little-endian UTF-16 or UTF-32 code units.
	Data []byte

	// Size is the number of source bytes, including the terminator for
	// NUL-terminated kinds.
	Size uint32

	// Alignment the encoded field requires within the record.
	Alignment uint8

	Kind Kind

	// FilterLength is planner-owned scratch: the capped UTF-8 content
	// length of a transcoded field, computed during planning and reused
	// during the write pass.
	FilterLength uint16
}

// Spec is the static registration-time metadata for one field of an
// event's schema: what the consumer needs to decode the record.
type Spec struct {
	Name      string
	Kind      Kind
	Size      uint32
	Alignment uint8
}

// Schema builds one field's registration metadata. Size is zero for
// kinds whose encoded length is per-record (transcoded and counted
// kinds).
func Schema(name string, kind Kind, size uint32, align uint8) Spec {
	return Spec{Name: name, Kind: kind, Size: size, Alignment: align}
}

func scalar(data []byte, kind Kind) Descriptor {
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: uint8(len(data)),
		Kind:      kind,
	}
}

// Uint8 describes an unsigned 8-bit value.
func Uint8(v uint8) Descriptor {
	return scalar([]byte{v}, KindUnsignedLE)
}

// Uint16 describes an unsigned 16-bit value, little-endian.
func Uint16(v uint16) Descriptor {
	return scalar(binary.LittleEndian.AppendUint16(nil, v), KindUnsignedLE)
}

// Uint32 describes an unsigned 32-bit value, little-endian.
func Uint32(v uint32) Descriptor {
	return scalar(binary.LittleEndian.AppendUint32(nil, v), KindUnsignedLE)
}

// Uint64 describes an unsigned 64-bit value, little-endian.
func Uint64(v uint64) Descriptor {
	return scalar(binary.LittleEndian.AppendUint64(nil, v), KindUnsignedLE)
}

// Int8 describes a signed 8-bit value.
func Int8(v int8) Descriptor {
	return scalar([]byte{byte(v)}, KindSignedLE)
}

// Int16 describes a signed 16-bit value, little-endian.
func Int16(v int16) Descriptor {
	return scalar(binary.LittleEndian.AppendUint16(nil, uint16(v)), KindSignedLE)
}

// Int32 describes a signed 32-bit value, little-endian.
func Int32(v int32) Descriptor {
	return scalar(binary.LittleEndian.AppendUint32(nil, uint32(v)), KindSignedLE)
}

// Int64 describes a signed 64-bit value, little-endian.
func Int64(v int64) Descriptor {
	return scalar(binary.LittleEndian.AppendUint64(nil, uint64(v)), KindSignedLE)
}

// Bool describes a boolean as an unsigned 8-bit 0 or 1.
func Bool(v bool) Descriptor {
	b := byte(0)
	if v {
		b = 1
	}
	return scalar([]byte{b}, KindUnsignedLE)
}

// Float32 describes a 32-bit float, little-endian IEEE 754.
func Float32(v float32) Descriptor {
	return scalar(binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)), KindFloatLE)
}

// Float64 describes a 64-bit float, little-endian IEEE 754.
func Float64(v float64) Descriptor {
	return scalar(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)), KindFloatLE)
}

// Uint16BE describes an unsigned 16-bit value in big-endian byte order.
func Uint16BE(v uint16) Descriptor {
	return scalar(binary.BigEndian.AppendUint16(nil, v), KindUnsignedBE)
}

// Uint32BE describes an unsigned 32-bit value in big-endian byte order.
func Uint32BE(v uint32) Descriptor {
	return scalar(binary.BigEndian.AppendUint32(nil, v), KindUnsignedBE)
}

// Uint64BE describes an unsigned 64-bit value in big-endian byte order.
func Uint64BE(v uint64) Descriptor {
	return scalar(binary.BigEndian.AppendUint64(nil, v), KindUnsignedBE)
}

// String8 describes 8-bit text. The encoded form includes a NUL
// terminator.
func String8(s string) Descriptor {
	data := make([]byte, len(s)+1)
	copy(data, s)
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 1,
		Kind:      KindString8,
	}
}

// Counted describes opaque bytes written with a 16-bit little-endian
// length prefix. Payloads longer than 65535 bytes are truncated.
func Counted(b []byte) Descriptor {
	n := len(b)
	if n > 65535 {
		n = 65535
	}
	data := make([]byte, 2+n)
	binary.LittleEndian.PutUint16(data, uint16(n))
	copy(data[2:], b[:n])
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 2,
		Kind:      KindCounted,
	}
}

// StringUTF16 describes NUL-terminated UTF-16 text to be transcoded to
// UTF-8. Unmatched surrogates are preserved, not rejected.
func StringUTF16(units []uint16) Descriptor {
	data := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(data[i*2:], u)
	}
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 1,
		Kind:      KindStringUTF16,
	}
}

// SequenceUTF16 describes counted UTF-16 text to be transcoded to UTF-8
// with a 16-bit length prefix.
func SequenceUTF16(units []uint16) Descriptor {
	data := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(data[i*2:], u)
	}
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 2,
		Kind:      KindSequenceUTF16,
	}
}

// StringUTF32 describes NUL-terminated UTF-32 text to be transcoded to
// UTF-8. Values outside the Unicode range are preserved, not rejected.
func StringUTF32(units []uint32) Descriptor {
	data := make([]byte, (len(units)+1)*4)
	for i, u := range units {
		binary.LittleEndian.PutUint32(data[i*4:], u)
	}
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 1,
		Kind:      KindStringUTF32,
	}
}

// SequenceUTF32 describes counted UTF-32 text to be transcoded to UTF-8
// with a 16-bit length prefix.
func SequenceUTF32(units []uint32) Descriptor {
	data := make([]byte, len(units)*4)
	for i, u := range units {
		binary.LittleEndian.PutUint32(data[i*4:], u)
	}
	return Descriptor{
		Data:      data,
		Size:      uint32(len(data)),
		Alignment: 2,
		Kind:      KindSequenceUTF32,
	}
}

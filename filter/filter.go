// Package filter feeds event fields to attached filter programs.
//
// A probe may carry a compiled filter program that decides per record
// whether to keep it. Before evaluation every field is flattened into a
// flat scalar buffer: one 64-bit slot per field, built once per write
// call and shared by all probes evaluating in that call.
//
// The evaluation semantics live entirely in the program; this package
// only marshals the scalar view and invokes the engine.
package filter

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/tracelog/field"
)

// Flatten builds the scalar view of fields in a pooled buffer. Call
// Release when every probe of the write call is done with it.
//
// Slot encoding per kind:
//
//	signed          sign-extended two's complement
//	unsigned        zero-extended
//	float           IEEE 754 double bits (f32 widened)
//	string8         content length in bytes, NUL excluded
//	counted         payload length in bytes
//	utf16/utf32     content length in source code units
//
// Big-endian fields are byte-swapped before widening, so programs always
// see native values. Text kinds expose lengths rather than contents:
// a pointer would be meaningless across the engine boundary.
func Flatten(fields []field.Descriptor) []uint64 {
	scalars := getScalars()
	for i := range fields {
		f := &fields[i]
		switch f.Kind {
		case field.KindNone:
			// No slot.
		case field.KindSignedLE, field.KindSignedBE:
			scalars = append(scalars, signedSlot(f))
		case field.KindUnsignedLE, field.KindUnsignedBE:
			scalars = append(scalars, unsignedSlot(f))
		case field.KindFloatLE, field.KindFloatBE:
			scalars = append(scalars, floatSlot(f))
		case field.KindString8:
			n := f.Size
			if n > 0 {
				n--
			}
			scalars = append(scalars, uint64(n))
		case field.KindCounted:
			n := f.Size
			if n >= 2 {
				n -= 2
			}
			scalars = append(scalars, uint64(n))
		case field.KindStringUTF16:
			scalars = append(scalars, uint64(contentUnits(f.Size, 2, true)))
		case field.KindSequenceUTF16:
			scalars = append(scalars, uint64(contentUnits(f.Size, 2, false)))
		case field.KindStringUTF32:
			scalars = append(scalars, uint64(contentUnits(f.Size, 4, true)))
		case field.KindSequenceUTF32:
			scalars = append(scalars, uint64(contentUnits(f.Size, 4, false)))
		}
	}
	return scalars
}

func contentUnits(size, unit uint32, terminated bool) uint32 {
	n := size / unit
	if terminated {
		if n == 0 {
			return 0
		}
		n--
	}
	return n
}

func raw(f *field.Descriptor, swap bool) uint64 {
	switch f.Size {
	case 1:
		return uint64(f.Data[0])
	case 2:
		v := binary.LittleEndian.Uint16(f.Data)
		if swap {
			v = v>>8 | v<<8
		}
		return uint64(v)
	case 4:
		if swap {
			return uint64(binary.BigEndian.Uint32(f.Data))
		}
		return uint64(binary.LittleEndian.Uint32(f.Data))
	case 8:
		if swap {
			return binary.BigEndian.Uint64(f.Data)
		}
		return binary.LittleEndian.Uint64(f.Data)
	}
	return 0
}

func signedSlot(f *field.Descriptor) uint64 {
	v := raw(f, f.Kind == field.KindSignedBE)
	switch f.Size {
	case 1:
		return uint64(int64(int8(v)))
	case 2:
		return uint64(int64(int16(v)))
	case 4:
		return uint64(int64(int32(v)))
	}
	return v
}

func unsignedSlot(f *field.Descriptor) uint64 {
	return raw(f, f.Kind == field.KindUnsignedBE)
}

func floatSlot(f *field.Descriptor) uint64 {
	v := raw(f, f.Kind == field.KindFloatBE)
	if f.Size == 4 {
		return math.Float64bits(float64(math.Float32frombits(uint32(v))))
	}
	return v
}

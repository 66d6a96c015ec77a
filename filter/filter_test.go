package filter

import (
	"testing"

	"github.com/wippyai/tracelog/field"
)

func TestFlattenScalars(t *testing.T) {
	tests := []struct {
		name string
		desc field.Descriptor
		want uint64
	}{
		{"uint8", field.Uint8(0xab), 0xab},
		{"uint64", field.Uint64(0x0102030405060708), 0x0102030405060708},
		{"int8_negative", field.Int8(-1), 0xffffffffffffffff},
		{"int16_negative", field.Int16(-2), 0xfffffffffffffffe},
		{"int32_positive", field.Int32(41), 41},
		{"int64_negative", field.Int64(-3), 0xfffffffffffffffd},
		{"bool", field.Bool(true), 1},
		{"uint16_be", field.Uint16BE(0x1234), 0x1234},
		{"uint32_be", field.Uint32BE(0x12345678), 0x12345678},
		{"uint64_be", field.Uint64BE(0x0102030405060708), 0x0102030405060708},
		{"float64", field.Float64(1.0), 0x3ff0000000000000},
		{"float32_widened", field.Float32(1.0), 0x3ff0000000000000},
		{"string8_length", field.String8("abcd"), 4},
		{"counted_length", field.Counted([]byte{1, 2, 3}), 3},
		{"utf16_string_units", field.StringUTF16([]uint16{'a', 'b'}), 2},
		{"utf16_sequence_units", field.SequenceUTF16([]uint16{'a', 'b', 'c'}), 3},
		{"utf32_string_units", field.StringUTF32([]uint32{'a'}), 1},
		{"utf32_sequence_units", field.SequenceUTF32([]uint32{'a', 'b'}), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scalars := Flatten([]field.Descriptor{tc.desc})
			defer Release(scalars)
			if len(scalars) != 1 {
				t.Fatalf("slots: got %d, want 1", len(scalars))
			}
			if scalars[0] != tc.want {
				t.Errorf("slot: got %#x, want %#x", scalars[0], tc.want)
			}
		})
	}
}

func TestFlattenSkipsNone(t *testing.T) {
	scalars := Flatten([]field.Descriptor{
		field.Uint8(1),
		{Kind: field.KindNone},
		field.Uint8(2),
	})
	defer Release(scalars)

	if len(scalars) != 2 {
		t.Fatalf("slots: got %d, want 2", len(scalars))
	}
	if scalars[0] != 1 || scalars[1] != 2 {
		t.Errorf("slots: got %v, want [1 2]", scalars)
	}
}

func TestFlattenEmptyText(t *testing.T) {
	scalars := Flatten([]field.Descriptor{
		field.String8(""),
		field.StringUTF16(nil),
		field.SequenceUTF32(nil),
	})
	defer Release(scalars)

	for i, s := range scalars {
		if s != 0 {
			t.Errorf("slot %d: got %d, want 0", i, s)
		}
	}
}

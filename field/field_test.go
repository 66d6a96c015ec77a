package field

import (
	"bytes"
	"testing"
)

func TestScalarConstructors(t *testing.T) {
	tests := []struct {
		name  string
		desc  Descriptor
		kind  Kind
		data  []byte
		align uint8
	}{
		{"uint8", Uint8(0xab), KindUnsignedLE, []byte{0xab}, 1},
		{"uint16", Uint16(0x1234), KindUnsignedLE, []byte{0x34, 0x12}, 2},
		{"uint32", Uint32(0x12345678), KindUnsignedLE, []byte{0x78, 0x56, 0x34, 0x12}, 4},
		{"uint64", Uint64(0x0102030405060708), KindUnsignedLE, []byte{8, 7, 6, 5, 4, 3, 2, 1}, 8},
		{"int8", Int8(-1), KindSignedLE, []byte{0xff}, 1},
		{"int32", Int32(-2), KindSignedLE, []byte{0xfe, 0xff, 0xff, 0xff}, 4},
		{"bool_true", Bool(true), KindUnsignedLE, []byte{1}, 1},
		{"bool_false", Bool(false), KindUnsignedLE, []byte{0}, 1},
		{"float32", Float32(1.0), KindFloatLE, []byte{0, 0, 0x80, 0x3f}, 4},
		{"uint16_be", Uint16BE(0x1234), KindUnsignedBE, []byte{0x12, 0x34}, 2},
		{"uint32_be", Uint32BE(0x12345678), KindUnsignedBE, []byte{0x12, 0x34, 0x56, 0x78}, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.desc.Kind != tc.kind {
				t.Errorf("kind: got %v, want %v", tc.desc.Kind, tc.kind)
			}
			if !bytes.Equal(tc.desc.Data, tc.data) {
				t.Errorf("data: got %x, want %x", tc.desc.Data, tc.data)
			}
			if tc.desc.Size != uint32(len(tc.data)) {
				t.Errorf("size: got %d, want %d", tc.desc.Size, len(tc.data))
			}
			if tc.desc.Alignment != tc.align {
				t.Errorf("align: got %d, want %d", tc.desc.Alignment, tc.align)
			}
		})
	}
}

func TestString8(t *testing.T) {
	d := String8("abc")
	if d.Kind != KindString8 {
		t.Errorf("kind: got %v", d.Kind)
	}
	if !bytes.Equal(d.Data, []byte{'a', 'b', 'c', 0}) {
		t.Errorf("data: got %x", d.Data)
	}
	if d.Size != 4 || d.Alignment != 1 {
		t.Errorf("size/align: got %d/%d, want 4/1", d.Size, d.Alignment)
	}
}

func TestCounted(t *testing.T) {
	t.Run("small", func(t *testing.T) {
		d := Counted([]byte{0xaa, 0xbb})
		if d.Kind != KindCounted || d.Alignment != 2 {
			t.Errorf("kind/align: got %v/%d", d.Kind, d.Alignment)
		}
		if !bytes.Equal(d.Data, []byte{2, 0, 0xaa, 0xbb}) {
			t.Errorf("data: got %x", d.Data)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		d := Counted(make([]byte, 70000))
		if d.Size != 2+65535 {
			t.Errorf("size: got %d, want %d", d.Size, 2+65535)
		}
		if d.Data[0] != 0xff || d.Data[1] != 0xff {
			t.Errorf("prefix: got %x %x, want ff ff", d.Data[0], d.Data[1])
		}
	})
}

func TestTranscodedConstructors(t *testing.T) {
	t.Run("string_utf16", func(t *testing.T) {
		d := StringUTF16([]uint16{0x0041, 0x4e2d})
		if d.Kind != KindStringUTF16 || d.Alignment != 1 {
			t.Errorf("kind/align: got %v/%d", d.Kind, d.Alignment)
		}
		// Two units plus the 16-bit NUL, little-endian.
		if !bytes.Equal(d.Data, []byte{0x41, 0x00, 0x2d, 0x4e, 0x00, 0x00}) {
			t.Errorf("data: got %x", d.Data)
		}
	})

	t.Run("sequence_utf16", func(t *testing.T) {
		d := SequenceUTF16([]uint16{0x0041})
		if d.Kind != KindSequenceUTF16 || d.Alignment != 2 {
			t.Errorf("kind/align: got %v/%d", d.Kind, d.Alignment)
		}
		if d.Size != 2 {
			t.Errorf("size: got %d, want 2 (no terminator)", d.Size)
		}
	})

	t.Run("string_utf32", func(t *testing.T) {
		d := StringUTF32([]uint32{0x1f600})
		if d.Kind != KindStringUTF32 {
			t.Errorf("kind: got %v", d.Kind)
		}
		if !bytes.Equal(d.Data, []byte{0x00, 0xf6, 0x01, 0x00, 0, 0, 0, 0}) {
			t.Errorf("data: got %x", d.Data)
		}
	})
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind       Kind
		transcoded bool
		sequence   bool
		utf16      bool
	}{
		{KindNone, false, false, false},
		{KindUnsignedLE, false, false, false},
		{KindString8, false, false, false},
		{KindCounted, false, false, false},
		{KindStringUTF16, true, false, true},
		{KindSequenceUTF16, true, true, true},
		{KindStringUTF32, true, false, false},
		{KindSequenceUTF32, true, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := tc.kind.IsTranscoded(); got != tc.transcoded {
				t.Errorf("IsTranscoded: got %v, want %v", got, tc.transcoded)
			}
			if got := tc.kind.IsSequence(); got != tc.sequence {
				t.Errorf("IsSequence: got %v, want %v", got, tc.sequence)
			}
			if got := tc.kind.IsUTF16(); got != tc.utf16 {
				t.Errorf("IsUTF16: got %v, want %v", got, tc.utf16)
			}
		})
	}
}

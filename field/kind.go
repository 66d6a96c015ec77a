package field

// Kind tags how one field's bytes are interpreted and encoded.
type Kind uint8

const (
	// KindNone contributes nothing to the record. Placeholder for
	// optional fields a call site leaves empty.
	KindNone Kind = iota
	KindSignedLE
	KindSignedBE
	KindUnsignedLE
	KindUnsignedBE
	KindFloatLE
	KindFloatBE
	// KindString8 is 8-bit text written as-is, including its NUL
	// terminator.
	KindString8
	// KindCounted is opaque bytes with a 16-bit length prefix, written
	// as-is.
	KindCounted
	// Transcoded kinds carry UTF-16 or UTF-32 code units and are
	// converted to UTF-8 while the record is written. Their encoded
	// length is content-dependent, which is why the write path plans
	// before it reserves.
	KindStringUTF16
	KindSequenceUTF16
	KindStringUTF32
	KindSequenceUTF32
)

var kindNames = [...]string{
	KindNone:          "none",
	KindSignedLE:      "signed-le",
	KindSignedBE:      "signed-be",
	KindUnsignedLE:    "unsigned-le",
	KindUnsignedBE:    "unsigned-be",
	KindFloatLE:       "float-le",
	KindFloatBE:       "float-be",
	KindString8:       "string8",
	KindCounted:       "counted",
	KindStringUTF16:   "string-utf16",
	KindSequenceUTF16: "sequence-utf16",
	KindStringUTF32:   "string-utf32",
	KindSequenceUTF32: "sequence-utf32",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsTranscoded reports whether the field's encoded length depends on its
// content.
func (k Kind) IsTranscoded() bool {
	return k >= KindStringUTF16 && k <= KindSequenceUTF32
}

// IsSequence reports whether a transcoded field carries a 16-bit length
// prefix instead of a NUL terminator.
func (k Kind) IsSequence() bool {
	return k == KindSequenceUTF16 || k == KindSequenceUTF32
}

// IsUTF16 reports whether a transcoded field's source is 16-bit code
// units (otherwise 32-bit).
func (k Kind) IsUTF16() bool {
	return k == KindStringUTF16 || k == KindSequenceUTF16
}

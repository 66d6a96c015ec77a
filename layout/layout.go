// Package layout computes the exact wire size and maximum alignment of a
// trace record before any byte of it is written.
//
// The buffer reservation contract needs both numbers up front, but
// transcoded fields have content-dependent encoded lengths, so planning
// runs the transcoder's size-only pass and caches each result in the
// descriptor for the write pass to reuse. Compute is idempotent: the
// writer calls it once per write call and reuses the plan across probes.
package layout

import (
	"strconv"

	"github.com/wippyai/tracelog/errors"
	"github.com/wippyai/tracelog/field"
	"github.com/wippyai/tracelog/transcode"
)

// MaxTranscodedBytes caps one transcoded field's UTF-8 content. Sequence
// length prefixes are 16-bit, so longer content cannot be represented.
const MaxTranscodedBytes = 65535

// maxSourceUnits caps the number of source code units fed to the
// transcoder, matching the content cap.
const maxSourceUnits = 65535

// Plan is the result of one planning pass over an ordered field list.
type Plan struct {
	// TotalBytes is the record's exact encoded size, alignment padding
	// included.
	TotalBytes uint32

	// MaxAlignment is the largest alignment any field requires.
	MaxAlignment uint8

	// ScratchBytes is the largest single transcoded field's output,
	// terminator or length prefix included. Zero when no field
	// transcodes.
	ScratchBytes uint32
}

// Compute plans the record described by fields. It caches each
// transcoded field's capped UTF-8 content length in the descriptor's
// FilterLength, which is why descriptors must not be shared across
// concurrent calls.
//
// A running-total overflow returns a size_overflow error; no bytes have
// been written at that point and the whole write is abandoned.
func Compute(fields []field.Descriptor) (Plan, error) {
	p := Plan{MaxAlignment: 1}

	for i := range fields {
		f := &fields[i]
		switch {
		case f.Kind == field.KindNone:
			// The write pass skips these; any stray Size or Alignment
			// must not be counted.

		case f.Kind.IsTranscoded() && !f.Kind.IsSequence():
			cb := sizeContent(f, stringUnits(f))
			f.FilterLength = uint16(cb)

			cb++ // 8-bit NUL terminator
			if cb > p.ScratchBytes {
				p.ScratchBytes = cb
			}
			if !p.add(cb) {
				return Plan{}, errors.SizeOverflow(fieldIndex(i))
			}

		case f.Kind.IsSequence():
			if !p.alignTo(2) {
				return Plan{}, errors.SizeOverflow(fieldIndex(i))
			}
			cb := sizeContent(f, sequenceUnits(f))
			f.FilterLength = uint16(cb)

			cb += 2 // 16-bit length prefix
			if cb > p.ScratchBytes {
				p.ScratchBytes = cb
			}
			if !p.add(cb) {
				return Plan{}, errors.SizeOverflow(fieldIndex(i))
			}

		default:
			if !p.alignTo(f.Alignment) {
				return Plan{}, errors.SizeOverflow(fieldIndex(i))
			}
			if !p.add(f.Size) {
				return Plan{}, errors.SizeOverflow(fieldIndex(i))
			}
		}
	}

	return p, nil
}

// ContentUnits returns the capped source window of a transcoded field:
// the exact bytes the planner sized. The write pass transcodes the same
// window so the planned and written lengths agree.
func ContentUnits(f *field.Descriptor) []byte {
	if f.Kind.IsSequence() {
		return sequenceUnits(f)
	}
	return stringUnits(f)
}

// stringUnits returns the capped source bytes of a NUL-terminated
// transcoded field, excluding the terminator. A zero Size (caller error:
// Size should have included the NUL) is treated as empty rather than
// underflowing.
func stringUnits(f *field.Descriptor) []byte {
	unit := uint32(4)
	if f.Kind.IsUTF16() {
		unit = 2
	}
	if f.Size < unit {
		return nil
	}
	n := f.Size/unit - 1
	if n > maxSourceUnits {
		n = maxSourceUnits
	}
	return f.Data[:n*unit]
}

// sequenceUnits returns the capped source bytes of a counted transcoded
// field.
func sequenceUnits(f *field.Descriptor) []byte {
	unit := uint32(4)
	if f.Kind.IsUTF16() {
		unit = 2
	}
	n := f.Size / unit
	if n > maxSourceUnits {
		n = maxSourceUnits
	}
	return f.Data[:n*unit]
}

func sizeContent(f *field.Descriptor, units []byte) uint32 {
	var cb int
	if f.Kind.IsUTF16() {
		cb = transcode.UTF16Size(units)
	} else {
		cb = transcode.UTF32Size(units)
	}
	if cb > MaxTranscodedBytes {
		cb = MaxTranscodedBytes
	}
	return uint32(cb)
}

// add grows the running total, reporting false on wraparound.
func (p *Plan) add(n uint32) bool {
	p.TotalBytes += n
	return p.TotalBytes >= n
}

// alignTo pads the running total up to a multiple of align and updates
// the running maximum alignment.
func (p *Plan) alignTo(align uint8) bool {
	if align < 2 {
		return true
	}
	if align > p.MaxAlignment {
		p.MaxAlignment = align
	}
	pad := AlignUp(p.TotalBytes, align) - p.TotalBytes
	return p.add(pad)
}

// AlignUp rounds offset up to the next multiple of align. align must be
// a power of two.
func AlignUp(offset uint32, align uint8) uint32 {
	mask := uint32(align) - 1
	return (offset + mask) &^ mask
}

func fieldIndex(i int) string {
	return "#" + strconv.Itoa(i)
}

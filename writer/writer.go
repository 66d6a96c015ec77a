// Package writer implements the trace write path: enablement check,
// per-probe filter evaluation, size planning, and the reserve/write/
// commit sequence against the sink.
//
// The dominant case in production is a disabled event, which returns
// after two atomic loads with zero field evaluation and zero buffer
// contact. For enabled events the path is plan-then-write: the planner
// runs once per call (field content is invariant across probes within
// one call, so the plan is reused), the sink reservation is made only
// once the exact size and alignment are known, and fields are encoded in
// declared order with alignment padding before each.
//
// All failures surface as returned status errors local to the call;
// nothing unwinds across the boundary and no partial record ever becomes
// visible.
package writer

import (
	"context"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/tracelog"
	"github.com/wippyai/tracelog/activity"
	"github.com/wippyai/tracelog/field"
	"github.com/wippyai/tracelog/filter"
	"github.com/wippyai/tracelog/layout"
	"github.com/wippyai/tracelog/provider"
	"github.com/wippyai/tracelog/transcode"
)

// Options carries per-write correlation inputs.
type Options struct {
	// Context supplies the ambient activity ID when ActivityID is zero.
	Context context.Context

	// ActivityID, when non-zero, is attached to the record explicitly.
	ActivityID activity.ID
}

// Write encodes one record of evt for every ready probe. Disabled events
// return nil immediately. A backpressure failure abandons that probe's
// record and continues with the remaining probes; the last such error is
// returned. Planning errors abandon the whole write before any byte is
// reserved.
func Write(evt *provider.Event, fields ...field.Descriptor) error {
	return WriteOpts(evt, Options{}, fields...)
}

// WriteOpts is Write with correlation options. When an activity ID
// resolves (explicit, else ambient from the context), it is appended to
// the record as a counted 16-byte field.
func WriteOpts(evt *provider.Event, opts Options, fields ...field.Descriptor) error {
	st := evt.Enablement()
	if st == nil || !st.Enabled() {
		return nil
	}

	if id := activity.Resolve(opts.ActivityID, opts.Context); !id.IsNone() {
		fields = append(fields[:len(fields):len(fields)], field.Counted(id[:]))
	}

	var (
		plan    layout.Plan
		planned bool
		scratch transcode.Scratch
		scalars []uint64
		lastErr error
	)
	defer scratch.Release()
	defer func() {
		if scalars != nil {
			filter.Release(scalars)
		}
	}()

	for _, probe := range st.Probes() {
		if !probe.Ready() {
			continue
		}

		if probe.Filter != nil {
			if scalars == nil {
				scalars = filter.Flatten(fields)
			}
			if !probe.Filter.Evaluate(scalars) {
				continue
			}
		}

		if !planned {
			var err error
			plan, err = layout.Compute(fields)
			if err != nil {
				return err
			}
			planned = true
		}

		res, err := probe.Buffer.Reserve(probe.EventID, plan.TotalBytes, plan.MaxAlignment)
		if err != nil {
			Logger().Debug("record dropped",
				zap.String("event", evt.WireName()),
				zap.Uint32("size", plan.TotalBytes),
				zap.Error(err))
			lastErr = err
			continue
		}

		writeFields(res, fields, &scratch)
		res.Commit()
	}

	return lastErr
}

// writeFields encodes fields into the reservation in declared order.
// The reservation already has exactly the planned size, so every path
// writes exactly the bytes the planner counted.
func writeFields(res tracelog.Reservation, fields []field.Descriptor, scratch *transcode.Scratch) {
	for i := range fields {
		f := &fields[i]
		if f.Kind == field.KindNone {
			continue
		}
		res.AlignPad(f.Alignment)

		switch {
		case f.Kind.IsTranscoded() && !f.Kind.IsSequence():
			n := uint32(f.FilterLength)
			buf := scratch.Bytes(n + 1)
			repairShortTranscode(buf[:n], transcodeContent(f, buf[:n]))
			buf[n] = 0
			res.WriteBytes(buf[:n+1])

		case f.Kind.IsSequence():
			n := uint32(f.FilterLength)
			buf := scratch.Bytes(n + 2)
			binary.LittleEndian.PutUint16(buf, uint16(n))
			repairShortTranscode(buf[2:2+n], transcodeContent(f, buf[2:2+n]))
			res.WriteBytes(buf[:n+2])

		default:
			res.WriteBytes(f.Data[:f.Size])
		}
	}
}

func transcodeContent(f *field.Descriptor, dst []byte) int {
	units := layout.ContentUnits(f)
	if f.Kind.IsUTF16() {
		return transcode.UTF16(units, dst)
	}
	return transcode.UTF32(units, dst)
}

// repairShortTranscode pads dst with '#' when the write pass produced
// fewer bytes than the planner counted — the source was mutated on
// another thread between the passes, or truncated at a multi-byte code
// point. The committed record must still have exactly the reserved
// length.
func repairShortTranscode(dst []byte, written int) {
	for i := written; i < len(dst); i++ {
		dst[i] = '#'
	}
}

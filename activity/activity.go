// Package activity provides 16-byte correlation identifiers relating
// causally-connected trace events.
//
// IDs are ULIDs: fast to generate, unique within a boot session without
// cryptographic entropy, and exactly the 16 bytes the record format
// carries. They make no global-uniqueness promise — correlating across
// machines is the consuming trace infrastructure's job.
//
// The ambient ID travels in a context.Context. A typical activity scope:
//
//	parent := activity.Current(ctx)
//	id := activity.Create()
//	ctx = activity.With(ctx, id)
//	// write a start event carrying id and parent, then info events
//	// under ctx, then a stop event carrying id.
package activity

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a 16-byte activity identifier.
type ID [16]byte

// None is the zero ID: no activity.
var None ID

// IsNone reports whether id is the zero ID.
func (id ID) IsNone() bool { return id == None }

// String renders the ID in ULID text form.
func (id ID) String() string { return ulid.ULID(id).String() }

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// Create generates a new locally-unique ID. Non-cryptographic and cheap
// enough for per-scope use on the write path.
func Create() ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ID(ulid.MustNew(ulid.Now(), entropy))
}

type contextKey struct{}

// With returns a context carrying id as the ambient activity.
func With(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Current returns the ambient activity ID, or None when ctx is nil or
// carries no activity.
func Current(ctx context.Context) ID {
	if ctx == nil {
		return None
	}
	if id, ok := ctx.Value(contextKey{}).(ID); ok {
		return id
	}
	return None
}

// Resolve picks the ID attached to a record: the explicit ID when
// present, else the ambient one, else None.
func Resolve(explicit ID, ctx context.Context) ID {
	if !explicit.IsNone() {
		return explicit
	}
	return Current(ctx)
}

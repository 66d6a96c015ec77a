package filter

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 1024 // max uint64 slots
	poolInitCap = 16
)

// uint64 buffer pool for flattened scalar views
var scalarPool = sync.Pool{
	New: func() any {
		buf := make([]uint64, 0, poolInitCap)
		return &buf
	},
}

func getScalars() []uint64 {
	return (*scalarPool.Get().(*[]uint64))[:0]
}

// Release returns a buffer obtained from Flatten to the pool.
func Release(scalars []uint64) {
	if scalars == nil || cap(scalars) > poolMaxCap {
		return // reject oversized
	}
	scalars = scalars[:0]
	scalarPool.Put(&scalars)
}

package transcode

// StackScratchSize is the size of the inline scratch buffer. One
// transcoded field's output lives in scratch between the transcode and
// the copy into the reserved record, so most writes never allocate.
const StackScratchSize = 256

// Scratch holds one transcoded field's output at a time during a write
// pass. Small fields use the inline array; a field needing more gets a
// heap buffer that lives for the rest of the call and is dropped by
// Release on every exit path.
//
// A Scratch is single-use per write call and not safe for concurrent
// use.
type Scratch struct {
	stack [StackScratchSize]byte
	heap  []byte
}

// Bytes returns a buffer of at least n bytes. The returned slice is
// invalidated by the next Bytes call.
func (s *Scratch) Bytes(n uint32) []byte {
	if n <= StackScratchSize {
		return s.stack[:n]
	}
	if uint32(len(s.heap)) < n {
		s.heap = make([]byte, n)
	}
	return s.heap[:n]
}

// Release drops any heap buffer. Safe to call multiple times; callers
// defer it so the buffer is freed on success and on every early error
// return alike.
func (s *Scratch) Release() {
	s.heap = nil
}

package realtime

import (
	"strings"
	"sync"
)

// Buffer is a bounded text buffer holding the tail of the live
// transcript. When appends push it past the limit, the oldest text is
// evicted so the buffer always holds the most recent suffix.
type Buffer struct {
	mu        sync.Mutex
	limit     int
	b         strings.Builder
	evictions int
}

// DefaultBufferLimit bounds the live transcript kept for display.
const DefaultBufferLimit = 8192

// NewBuffer creates a buffer holding at most limit bytes. A limit of
// zero or less uses DefaultBufferLimit.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	return &Buffer{limit: limit}
}

// Append adds text, evicting the oldest content if needed. It reports
// whether an eviction happened.
func (b *Buffer) Append(text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.b.Len() > 0 {
		b.b.WriteByte(' ')
	}
	b.b.WriteString(text)

	if b.b.Len() <= b.limit {
		return false
	}

	s := b.b.String()
	s = s[len(s)-b.limit:]
	b.b.Reset()
	b.b.WriteString(s)
	b.evictions++
	return true
}

// String returns the current buffered suffix.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Len returns the buffered byte count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Len()
}

// Evictions returns how many times old text was dropped.
func (b *Buffer) Evictions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evictions
}

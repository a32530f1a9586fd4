package journal

import "sync"

// Trail is an append-only in-memory log of human-readable event lines,
// oldest first. Safe for concurrent use.
type Trail struct {
	mu      sync.RWMutex
	entries []string
}

func NewTrail() *Trail {
	return &Trail{}
}

func (t *Trail) Append(line string) {
	t.mu.Lock()
	t.entries = append(t.entries, line)
	t.mu.Unlock()
}

// Last returns a copy of the last n entries in original order. n <= 0 or
// n >= len returns the full trail.
func (t *Trail) Last(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	start := 0
	if n > 0 && n < len(t.entries) {
		start = len(t.entries) - n
	}
	out := make([]string, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out
}

// All returns a copy of the full trail.
func (t *Trail) All() []string {
	return t.Last(0)
}

func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

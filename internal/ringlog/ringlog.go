package ringlog

// DefaultCapacity is the per-subject record bound applied when callers do
// not configure one.
const DefaultCapacity = 100

// Log is a fixed-capacity FIFO record store. When full, appending evicts the
// single oldest record. The zero value is not usable; construct with New.
type Log[T any] struct {
	buf  []T
	head int
	size int
}

// New returns a log holding at most capacity records. Capacities below 1 are
// clamped to 1; the capacity never changes afterwards.
func New[T any](capacity int) *Log[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Log[T]{buf: make([]T, capacity)}
}

// Append adds v as the newest record, evicting the oldest one first when the
// log is at capacity. O(1).
func (l *Log[T]) Append(v T) {
	if l.size == len(l.buf) {
		l.buf[l.head] = v
		l.head = (l.head + 1) % len(l.buf)
		return
	}
	l.buf[(l.head+l.size)%len(l.buf)] = v
	l.size++
}

// Items returns the retained records oldest-to-newest. The returned slice is
// a snapshot; later appends or clears do not affect it.
func (l *Log[T]) Items() []T {
	if l.size == 0 {
		return nil
	}
	out := make([]T, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

// Clear removes all records. Capacity is unchanged.
func (l *Log[T]) Clear() {
	var zero T
	for i := range l.buf {
		l.buf[i] = zero
	}
	l.head = 0
	l.size = 0
}

func (l *Log[T]) Len() int { return l.size }

func (l *Log[T]) Cap() int { return len(l.buf) }

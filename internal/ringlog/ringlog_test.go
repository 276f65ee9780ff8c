package ringlog

import (
	"fmt"
	"testing"
)

func TestAppendWithinCapacity(t *testing.T) {
	l := New[int](3)
	l.Append(1)
	l.Append(2)
	if l.Len() != 2 {
		t.Fatalf("expected len 2, got %d", l.Len())
	}
	items := l.Items()
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestEvictionWindow(t *testing.T) {
	// Concrete scenario: capacity 5, append e0..e6, expect [e2..e6].
	l := New[string](5)
	for i := 0; i <= 6; i++ {
		l.Append(fmt.Sprintf("e%d", i))
	}
	items := l.Items()
	want := []string{"e2", "e3", "e4", "e5", "e6"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("position %d: expected %s, got %s", i, w, items[i])
		}
	}
}

func TestCapacityInvariant(t *testing.T) {
	l := New[int](10)
	for i := 0; i < 1000; i++ {
		l.Append(i)
		if l.Len() > l.Cap() {
			t.Fatalf("length %d exceeded capacity %d", l.Len(), l.Cap())
		}
	}
	items := l.Items()
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	// Most recent 10, in original relative order.
	for i, v := range items {
		if v != 990+i {
			t.Errorf("position %d: expected %d, got %d", i, 990+i, v)
		}
	}
}

func TestSingleOldestEvicted(t *testing.T) {
	l := New[int](3)
	for i := 1; i <= 3; i++ {
		l.Append(i)
	}
	l.Append(4)
	items := l.Items()
	if len(items) != 3 || items[0] != 2 || items[1] != 3 || items[2] != 4 {
		t.Fatalf("expected [2 3 4], got %v", items)
	}
}

func TestItemsSnapshotIsolation(t *testing.T) {
	l := New[int](4)
	l.Append(1)
	l.Append(2)
	snap := l.Items()
	l.Append(3)
	l.Clear()
	if len(snap) != 2 || snap[0] != 1 || snap[1] != 2 {
		t.Fatalf("snapshot mutated: %v", snap)
	}
}

func TestClear(t *testing.T) {
	l := New[int](3)
	l.Append(1)
	l.Clear()
	if l.Len() != 0 || l.Items() != nil {
		t.Fatalf("expected empty log after clear")
	}
	// Clear on empty log is a no-op.
	l.Clear()
	l.Append(9)
	if items := l.Items(); len(items) != 1 || items[0] != 9 {
		t.Fatalf("append after clear broken: %v", items)
	}
}

func TestMinimumCapacity(t *testing.T) {
	l := New[int](0)
	if l.Cap() != 1 {
		t.Fatalf("expected clamped capacity 1, got %d", l.Cap())
	}
	l.Append(1)
	l.Append(2)
	if items := l.Items(); len(items) != 1 || items[0] != 2 {
		t.Fatalf("expected [2], got %v", items)
	}
}

package diff

import (
	"strings"
	"testing"
)

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

type panicFields struct{}

func (panicFields) Fields() map[string]string { panic("no fields for you") }
func (panicFields) String() string            { return "PanicState(x: 1)" }

type typedState struct{ fields map[string]string }

func (s typedState) Fields() map[string]string { return s.fields }

func TestDiffBothNil(t *testing.T) {
	if got := Diff(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestDiffNoChange(t *testing.T) {
	s := stringer{s: "Foo(a: 1, b: 2)"}
	if got := Diff(s, s); len(got) != 0 {
		t.Fatalf("expected empty diff, got %v", got)
	}
}

func TestDiffNullTransitions(t *testing.T) {
	added := Diff(nil, stringer{s: "Ready(count: 0)"})
	if len(added) != 1 || added[0].Kind != KindAdded {
		t.Fatalf("expected single added entry, got %v", added)
	}
	if added[0].Old != "" || added[0].New == "" {
		t.Errorf("added entry sides wrong: %+v", added[0])
	}

	removed := Diff(stringer{s: "Ready(count: 0)"}, nil)
	if len(removed) != 1 || removed[0].Kind != KindRemoved {
		t.Fatalf("expected single removed entry, got %v", removed)
	}
	if removed[0].New != "" || removed[0].Old == "" {
		t.Errorf("removed entry sides wrong: %+v", removed[0])
	}
}

func TestDiffModifiedField(t *testing.T) {
	// Concrete scenario from the transition inspector contract.
	got := Diff(stringer{s: "Foo(a: 1, b: 2)"}, stringer{s: "Foo(a: 1, b: 3)"})
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %v", got)
	}
	e := got[0]
	if e.Field != "b" || e.Old != "2" || e.New != "3" || e.Kind != KindModified {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestDiffAddedAndRemovedFields(t *testing.T) {
	got := Diff(
		stringer{s: "Cart(items: 2, coupon: SPRING)"},
		stringer{s: "Cart(items: 2, total: 10)"},
	)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	// Entries are sorted by field name.
	if got[0].Field != "coupon" || got[0].Kind != KindRemoved || got[0].Old != "SPRING" {
		t.Errorf("unexpected removed entry %+v", got[0])
	}
	if got[1].Field != "total" || got[1].Kind != KindAdded || got[1].New != "10" {
		t.Errorf("unexpected added entry %+v", got[1])
	}
}

func TestDiffTypedFieldProvider(t *testing.T) {
	old := typedState{fields: map[string]string{"phase": "loading", "retries": "0"}}
	next := typedState{fields: map[string]string{"phase": "ready", "retries": "0"}}
	got := Diff(old, next)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %v", got)
	}
	if got[0].Field != "phase" || got[0].Old != "loading" || got[0].New != "ready" {
		t.Errorf("unexpected entry %+v", got[0])
	}
}

func TestDiffPanicDegradesToWholeValue(t *testing.T) {
	got := Diff(panicFields{}, stringer{s: "Other(y: 2)"})
	if len(got) != 1 || got[0].Kind != KindModified {
		t.Fatalf("expected single modified whole-value entry, got %v", got)
	}
	if got[0].Field != "" {
		t.Errorf("whole-value entry should not name a field: %+v", got[0])
	}
}

func TestDiffPanicEqualTextsEmpty(t *testing.T) {
	// Both sides render identically; the degraded comparison emits nothing.
	got := Diff(panicFields{}, stringer{s: "PanicState(x: 1)"})
	if len(got) != 0 {
		t.Fatalf("expected empty diff, got %v", got)
	}
}

func TestDiffTruncatesLongRenderings(t *testing.T) {
	long := stringer{s: strings.Repeat("a", 200)}
	got := Diff(nil, long)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %v", got)
	}
	if len(got[0].New) != 83 || !strings.HasSuffix(got[0].New, "...") {
		t.Errorf("expected 80 chars plus ellipsis, got %d chars", len(got[0].New))
	}
}

func TestDiffFieldlessTexts(t *testing.T) {
	// No key: value pairs on either side means an empty field union.
	got := Diff(stringer{s: "loading"}, stringer{s: "ready"})
	if len(got) != 0 {
		t.Fatalf("expected empty diff for fieldless texts, got %v", got)
	}
}

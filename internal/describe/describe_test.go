package describe

import (
	"strings"
	"testing"
)

type loginEvent struct{ user, method string }

func (e loginEvent) String() string {
	return "LoginEvent(user: " + e.user + ", method: " + e.method + ")"
}

type opaque struct{ a, b int }

type panicky struct{}

func (panicky) String() string { panic("boom") }

type described struct{}

func (described) Description() string { return "described payload" }

func TestDescribePrimitives(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "click", "string: click"},
		{"bool", true, "bool: true"},
		{"int", 42, "int: 42"},
		{"int64", int64(7), "int64: 7"},
		{"float", 1.5, "float64: 1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.in); got != tc.want {
				t.Errorf("Describe(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDescribeNil(t *testing.T) {
	if got := Describe(nil); got != "" {
		t.Errorf("Describe(nil) = %q, want empty", got)
	}
}

func TestDescribeStructuredShapeVerbatim(t *testing.T) {
	e := loginEvent{user: "alice", method: "oauth"}
	got := Describe(e)
	if got != "LoginEvent(user: alice, method: oauth)" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestDescribeDescriptionWins(t *testing.T) {
	if got := Describe(described{}); got != "described payload" {
		t.Errorf("expected explicit description, got %q", got)
	}
}

func TestDescribePlaceholderFallsBackToTypeName(t *testing.T) {
	got := Describe(opaque{a: 1, b: 2})
	if got != "describe.opaque" {
		t.Errorf("expected type name fallback, got %q", got)
	}
}

func TestDescribeShortVerbatim(t *testing.T) {
	// Not structured (no key: value), but short enough to keep as-is.
	e := loginEvent{user: "", method: ""}
	_ = e
	s := Describe(errOf("connection refused"))
	if s != "connection refused" {
		t.Errorf("expected verbatim error text, got %q", s)
	}
}

func TestDescribeLongStringExtractsFields(t *testing.T) {
	long := "CartState(items: 12, total: 99.90, coupon: SPRING, note: " +
		strings.Repeat("x", 300) + ")"
	got := Describe(stringerOf(long))
	if !strings.HasPrefix(got, "CartState(") {
		t.Fatalf("expected reconstructed class name, got %q", got)
	}
	if !strings.Contains(got, "items: 12") || !strings.Contains(got, "total: 99.90") {
		t.Errorf("expected extracted fields, got %q", got)
	}
	// At most three pairs survive.
	if strings.Count(got, ":") > 3 {
		t.Errorf("expected at most 3 fields, got %q", got)
	}
}

func TestDescribeLongStringNoFields(t *testing.T) {
	got := Describe(stringerOf(strings.Repeat("z", 400)))
	if got != "describe.stringer" {
		t.Errorf("expected type name for fieldless long string, got %q", got)
	}
}

func TestDescribeNeverPanics(t *testing.T) {
	inputs := []any{
		panicky{},
		stringerOf("Foo(a: 1, b: (((("),
		stringerOf("Броня(поле: значение, ещё: да)"),
		stringerOf(strings.Repeat("Event(", 5000)),
		map[string]any{"k": []int{1, 2, 3}},
	}
	for _, in := range inputs {
		got := Describe(in)
		if got == "" {
			t.Errorf("Describe(%T) returned empty", in)
		}
	}
}

func TestDescribePanickyStringerDegrades(t *testing.T) {
	if got := Describe(panicky{}); got != "describe.panicky" {
		t.Errorf("expected type name after recover, got %q", got)
	}
}

func TestExtractFields(t *testing.T) {
	fields := ExtractFields("Foo(a: 1, b: 2)")
	if len(fields) != 2 || fields["a"] != "1" || fields["b"] != "2" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestExtractFieldsEmpty(t *testing.T) {
	if fields := ExtractFields("no pairs here"); len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestRenderRecoversPanic(t *testing.T) {
	if got := Render(panicky{}); got != "describe.panicky" {
		t.Errorf("expected type name, got %q", got)
	}
}

// --- helpers ---

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

func stringerOf(s string) stringer { return stringer{s: s} }

type strErr struct{ s string }

func (e strErr) Error() string { return e.s }

func errOf(s string) error { return strErr{s: s} }

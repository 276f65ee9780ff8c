package describe

import "testing"

// FuzzDescribe asserts the describe contract: any textual form, however
// malformed, yields a non-empty description without panicking.
func FuzzDescribe(f *testing.F) {
	f.Add("Foo(a: 1, b: 2)")
	f.Add("unbalanced(((")
	f.Add("no pairs at all")
	f.Add("WeirdEvent(поле: значение)")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		got := Describe(stringerOf(s))
		if got == "" {
			t.Errorf("Describe produced empty description for %q", s)
		}
		// Extraction must also tolerate anything.
		_ = ExtractFields(s)
	})
}

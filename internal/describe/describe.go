package describe

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Display limits for derived descriptions. Structured values keep more room
// because the field list itself carries the information.
const (
	structuredMaxLen = 200
	verbatimMaxLen   = 150
	maxFields        = 3

	// scanLimit bounds regex input so extraction stays cheap even for
	// pathological payload renderings.
	scanLimit = 2048
)

// Describer is implemented by payload types that provide their own display
// text. It takes precedence over fmt.Stringer and the string heuristics.
type Describer interface {
	Description() string
}

// FieldProvider is implemented by payload types that can enumerate their own
// fields. The diff engine prefers it over string extraction.
type FieldProvider interface {
	Fields() map[string]string
}

var (
	// structuredRe matches the Identifier(field: value, ...) shape, with or
	// without a conventional Event/State/Data/... suffix in the identifier.
	structuredRe = regexp.MustCompile(`^[A-Za-z_]\w*\(\s*\w+\s*:\s*[^,()\[\]{}]*(?:\s*,\s*\w+\s*:\s*[^,()\[\]{}]*)*\s*\)$`)

	// fieldRe captures key: value pairs up to the next comma or bracket.
	fieldRe = regexp.MustCompile(`(\w+)\s*:\s*([^,()\[\]{}]+)`)

	classRe         = regexp.MustCompile(`^(\w+)\(`)
	classFallbackRe = []*regexp.Regexp{
		regexp.MustCompile(`(\w*Event\w*)\(`),
		regexp.MustCompile(`(\w*State\w*)\(`),
	}
)

// Describe derives a short display string for an arbitrary payload value.
// It never panics; any failure while rendering or extracting degrades to the
// bare type name.
func Describe(v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = typeName(v)
		}
	}()
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return "string: " + t
	case bool:
		return fmt.Sprintf("bool: %t", t)
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%T: %v", t, t)
	}

	s, explicit := render(v)
	if s == "" {
		return typeName(v)
	}
	if !explicit && isPlaceholder(s) {
		return typeName(v)
	}
	if structuredRe.MatchString(s) && utf8.RuneCountInString(s) <= structuredMaxLen {
		return s
	}
	if utf8.RuneCountInString(s) <= verbatimMaxLen {
		return s
	}
	return summarize(clip(s, scanLimit), typeName(v))
}

// Render returns the raw textual form of a value without length limits,
// degrading to the type name if the value's String/Description panics.
// The diff engine uses it to obtain comparable renderings.
func Render(v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = typeName(v)
		}
	}()
	if v == nil {
		return ""
	}
	s, _ := render(v)
	return s
}

// ExtractFields pulls key: value pairs out of a textual form. Keys keep their
// original spelling; values are trimmed. Later duplicates win.
func ExtractFields(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range fieldRe.FindAllStringSubmatch(clip(s, scanLimit), -1) {
		out[m[1]] = strings.TrimSpace(m[2])
	}
	return out
}

// render returns the value's textual form and whether the value supplied it
// explicitly (Description, String or Error) rather than via fmt defaults.
func render(v any) (string, bool) {
	switch t := v.(type) {
	case Describer:
		return t.Description(), true
	case fmt.Stringer:
		return t.String(), true
	case error:
		return t.Error(), true
	}
	return fmt.Sprintf("%v", v), false
}

// isPlaceholder reports whether a fmt default rendering carries no field
// names worth showing: bare struct dumps, pointer dumps and nils.
func isPlaceholder(s string) bool {
	if s == "" || s == "<nil>" {
		return true
	}
	return strings.HasPrefix(s, "{") ||
		strings.HasPrefix(s, "&{") ||
		strings.HasPrefix(s, "map[") ||
		strings.HasPrefix(s, "[")
}

// summarize rebuilds ClassName(field: value, ...) from an over-long textual
// form, keeping at most maxFields pairs.
func summarize(s, fallbackType string) string {
	pairs := fieldRe.FindAllStringSubmatch(s, maxFields)
	class := className(s)
	if len(pairs) == 0 && class == "" {
		return fallbackType
	}
	if class == "" {
		class = fallbackType
	}
	if len(pairs) == 0 {
		return class
	}
	parts := make([]string, 0, len(pairs))
	for _, m := range pairs {
		parts = append(parts, m[1]+": "+strings.TrimSpace(m[2]))
	}
	return class + "(" + strings.Join(parts, ", ") + ")"
}

func className(s string) string {
	if m := classRe.FindStringSubmatch(s); m != nil && len(m[1]) > 2 {
		return m[1]
	}
	for _, re := range classFallbackRe {
		if m := re.FindStringSubmatch(s); m != nil && len(m[1]) > 2 {
			return m[1]
		}
	}
	return ""
}

func typeName(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

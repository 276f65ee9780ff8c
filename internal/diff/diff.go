package diff

import (
	"sort"
	"unicode/utf8"

	"github.com/loykin/statewatch/internal/describe"
)

// Kind classifies a per-field state change.
type Kind string

const (
	KindAdded    Kind = "added"
	KindRemoved  Kind = "removed"
	KindModified Kind = "modified"
)

// truncateLen bounds the whole-value renderings used for null transitions
// and the degraded whole-value diff.
const truncateLen = 80

// Entry is one changed field between two successive states. Old is empty for
// added fields, New is empty for removed ones. Entries are transient: they
// are computed on demand and never stored.
type Entry struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
	Kind  Kind   `json:"kind"`
}

// Diff computes the field-level changes between two successive state values.
// Values implementing describe.FieldProvider are compared structurally; all
// other values fall back to key: value extraction from their textual form.
// Diff never panics; extraction failures degrade to a single whole-value
// entry.
func Diff(oldState, newState any) []Entry {
	if oldState == nil && newState == nil {
		return nil
	}
	if oldState == nil {
		return []Entry{{New: truncate(describe.Render(newState)), Kind: KindAdded}}
	}
	if newState == nil {
		return []Entry{{Old: truncate(describe.Render(oldState)), Kind: KindRemoved}}
	}

	oldText := describe.Render(oldState)
	newText := describe.Render(newState)
	entries, ok := fieldDiff(oldState, newState, oldText, newText)
	if ok {
		return entries
	}
	// Degraded whole-value comparison.
	o, n := truncate(oldText), truncate(newText)
	if o == n {
		return nil
	}
	return []Entry{{Old: o, New: n, Kind: KindModified}}
}

// fieldDiff compares per-field values; ok is false when extraction panicked.
func fieldDiff(oldState, newState any, oldText, newText string) (entries []Entry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			entries, ok = nil, false
		}
	}()
	oldFields := fieldsOf(oldState, oldText)
	newFields := fieldsOf(newState, newText)

	names := make([]string, 0, len(oldFields)+len(newFields))
	seen := make(map[string]struct{}, len(oldFields)+len(newFields))
	for k := range oldFields {
		names = append(names, k)
		seen[k] = struct{}{}
	}
	for k := range newFields {
		if _, dup := seen[k]; !dup {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		oldVal, inOld := oldFields[name]
		newVal, inNew := newFields[name]
		switch {
		case inOld && !inNew:
			entries = append(entries, Entry{Field: name, Old: oldVal, Kind: KindRemoved})
		case !inOld && inNew:
			entries = append(entries, Entry{Field: name, New: newVal, Kind: KindAdded})
		case oldVal != newVal:
			entries = append(entries, Entry{Field: name, Old: oldVal, New: newVal, Kind: KindModified})
		}
	}
	return entries, true
}

func fieldsOf(v any, text string) map[string]string {
	if p, isProvider := v.(describe.FieldProvider); isProvider {
		if fields := p.Fields(); fields != nil {
			return fields
		}
	}
	return describe.ExtractFields(text)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= truncateLen {
		return s
	}
	r := []rune(s)
	return string(r[:truncateLen]) + "..."
}

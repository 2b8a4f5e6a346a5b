package actions

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// Selection is an ordered, duplicate-free list of target identifiers.
type Selection []string

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	return slices.Contains(s, id)
}

// SelectionCodec moves selections in and out of form values, one repeated
// field value per identifier.
type SelectionCodec struct {
	// Field is the repeated form key. Empty means SelectionField.
	Field string
}

// DefaultCodec uses the reserved selection field.
var DefaultCodec = SelectionCodec{Field: SelectionField}

func (c SelectionCodec) field() string {
	if strings.TrimSpace(c.Field) == "" {
		return SelectionField
	}
	return c.Field
}

// FieldName returns the form key used for identifiers.
func (c SelectionCodec) FieldName() string {
	return c.field()
}

// Encode writes ids in order under the selection field.
func (c SelectionCodec) Encode(ids []string) url.Values {
	values := url.Values{}
	for _, id := range ids {
		values.Add(c.field(), id)
	}
	return values
}

// Decode reads the selection field, trimming values and dropping blanks,
// malformed identifiers and repeats while keeping first-seen order. A missing
// or malformed field decodes to an empty Selection.
func (c SelectionCodec) Decode(values url.Values) Selection {
	raw := values[c.field()]
	if len(raw) == 0 {
		return Selection{}
	}
	seen := make(map[string]struct{}, len(raw))
	out := make(Selection, 0, len(raw))
	for _, value := range raw {
		id := strings.TrimSpace(value)
		if !wellFormedID(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Dedupe applies Decode's ordering and duplicate rules to ids.
func Dedupe(ids []string) Selection {
	return DefaultCodec.Decode(DefaultCodec.Encode(ids))
}

func wellFormedID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

package actions

import (
	"net/url"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestSelectionCodecRoundTripDedupes(t *testing.T) {
	t.Parallel()

	got := DefaultCodec.Decode(DefaultCodec.Encode([]string{"3", "1", "2", "1"}))
	if want := (Selection{"3", "1", "2"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("decode(encode) = %v, want %v", got, want)
	}
}

func TestSelectionCodecDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values url.Values
		want   Selection
	}{
		{name: "missing", values: url.Values{}, want: Selection{}},
		{name: "nil", values: nil, want: Selection{}},
		{name: "blank values", values: url.Values{SelectionField: {"", "  "}}, want: Selection{}},
		{name: "control chars", values: url.Values{SelectionField: {"1\x00", "2"}}, want: Selection{"2"}},
		{name: "trimmed", values: url.Values{SelectionField: {" 7 ", "7", "8"}}, want: Selection{"7", "8"}},
		{name: "other field", values: url.Values{"ids": {"1"}}, want: Selection{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DefaultCodec.Decode(tc.values)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Decode() = %#v, want %#v", got, tc.want)
			}
			if got == nil {
				t.Fatal("Decode() returned nil selection")
			}
		})
	}
}

func TestSelectionCodecCustomField(t *testing.T) {
	t.Parallel()

	codec := SelectionCodec{Field: "ids"}
	values := codec.Encode([]string{"a", "b"})
	if got := values["ids"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("encoded = %v, want [a b]", got)
	}
	if codec.FieldName() != "ids" {
		t.Fatalf("FieldName() = %q, want ids", codec.FieldName())
	}
	if (SelectionCodec{}).FieldName() != SelectionField {
		t.Fatalf("zero codec field = %q, want %q", (SelectionCodec{}).FieldName(), SelectionField)
	}
}

func TestSelectionCodecProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOf(rapid.StringMatching(`[0-9]{1,3}`)).Draw(t, "ids")
		decoded := DefaultCodec.Decode(DefaultCodec.Encode(ids))

		seen := map[string]bool{}
		var want Selection
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				want = append(want, id)
			}
		}
		if len(decoded) != len(want) {
			t.Fatalf("decoded = %v, want %v", decoded, want)
		}
		for i := range want {
			if decoded[i] != want[i] {
				t.Fatalf("decoded = %v, want %v", decoded, want)
			}
		}

		again := DefaultCodec.Decode(DefaultCodec.Encode(decoded))
		if !reflect.DeepEqual(again, decoded) {
			t.Fatalf("decode not idempotent: %v then %v", decoded, again)
		}
	})
}

func TestSelectionContains(t *testing.T) {
	t.Parallel()

	selection := Selection{"1", "2"}
	if !selection.Contains("2") || selection.Contains("3") {
		t.Fatalf("Contains mismatch for %v", selection)
	}
	if !(Selection{}).IsEmpty() {
		t.Fatal("empty selection should report IsEmpty")
	}
}

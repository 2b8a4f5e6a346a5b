package filter

import (
	"reflect"
	"testing"
)

func TestParseArticleFilterStatusEquals(t *testing.T) {
	cond, err := ParseArticleFilter(`status = "draft"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "status = ?" {
		t.Fatalf("Clause = %q, want %q", cond.Clause, "status = ?")
	}
	if !reflect.DeepEqual(cond.Params, []any{"draft"}) {
		t.Fatalf("Params = %v", cond.Params)
	}
	if cond.Where() != " WHERE status = ?" {
		t.Fatalf("Where() = %q", cond.Where())
	}
}

func TestParseArticleFilterEmpty(t *testing.T) {
	cond, err := ParseArticleFilter(" ")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if !cond.IsEmpty() || cond.Params != nil {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
	if cond.Where() != "" {
		t.Fatalf("Where() = %q, want empty", cond.Where())
	}
}

func TestParseArticleFilterAndOr(t *testing.T) {
	cond, err := ParseArticleFilter(`status = "draft" AND author = "ana"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(status = ? AND author = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"draft", "ana"}) {
		t.Fatalf("Params = %v", cond.Params)
	}

	cond, err = ParseArticleFilter(`status = "draft" OR status = "archived"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(status = ? OR status = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParseArticleFilterTimestamp(t *testing.T) {
	cond, err := ParseArticleFilter(`created_at > timestamp("2026-01-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "created_at > ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if len(cond.Params) != 1 || cond.Params[0] != "2026-01-01T00:00:00.000000000Z" {
		t.Fatalf("Params = %v", cond.Params)
	}
}

func TestParseArticleFilterTimestampIsFixedWidth(t *testing.T) {
	cond, err := ParseArticleFilter(`updated_at <= timestamp("2026-01-01T02:00:00.5+02:00")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if len(cond.Params) != 1 || cond.Params[0] != "2026-01-01T00:00:00.500000000Z" {
		t.Fatalf("Params = %v, want UTC with nine fractional digits", cond.Params)
	}
}

func TestParseArticleFilterNotEquals(t *testing.T) {
	cond, err := ParseArticleFilter(`status != "published"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "status != ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParseArticleFilterRejectsInvalid(t *testing.T) {
	for _, input := range []string{
		`unknown = "x"`,
		`status = `,
		`created_at > timestamp("yesterday")`,
	} {
		if _, err := ParseArticleFilter(input); err == nil {
			t.Fatalf("ParseArticleFilter(%q) expected error", input)
		}
	}
}

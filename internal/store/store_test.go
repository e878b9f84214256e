package store

import "testing"

func TestToPrefixTSQuery(t *testing.T) {
	got := toPrefixTSQuery("golang backend-engineer")
	want := "golang:* & backendengineer:*"
	if got != want {
		t.Fatalf("toPrefixTSQuery() = %q, want %q", got, want)
	}
}

func TestToPrefixTSQuery_Empty(t *testing.T) {
	if got := toPrefixTSQuery("   "); got != "" {
		t.Fatalf("expected empty query for blank input, got %q", got)
	}
}

func TestSanitiseTSQueryTerm(t *testing.T) {
	if got := sanitiseTSQueryTerm("C++ Dev!"); got != "CDev" {
		t.Fatalf("sanitiseTSQueryTerm() = %q, want %q", got, "CDev")
	}
}

func TestPqStringArray(t *testing.T) {
	got := pqStringArray([]string{"a", `b"c`, `d\e`})
	want := `{"a","b\"c","d\\e"}`
	if got != want {
		t.Fatalf("pqStringArray() = %q, want %q", got, want)
	}
}

func TestPqStringArray_Empty(t *testing.T) {
	if got := pqStringArray(nil); got != "{}" {
		t.Fatalf("pqStringArray(nil) = %q, want {}", got)
	}
}

func TestNormaliseRow_KeepsID(t *testing.T) {
	// jobs has no surrogate "id" column (job_id is the primary key), but
	// notes/saved_searches/ai_prompts/ai_analyses all key off a real
	// BIGSERIAL "id" that callers need back.
	cols := []string{"id", "job_id", "title"}
	vals := []any{int64(7), "abc123", "Engineer"}
	row := normaliseRow(cols, vals)
	if row["id"] != int64(7) {
		t.Fatalf("id = %v, want 7", row["id"])
	}
	if row["job_id"] != "abc123" {
		t.Fatalf("job_id = %v, want abc123", row["job_id"])
	}
}

func TestNormaliseRow_NullBecomesEmptyString(t *testing.T) {
	cols := []string{"salary_currency"}
	vals := []any{nil}
	row := normaliseRow(cols, vals)
	if row["salary_currency"] != "" {
		t.Fatalf("expected null to normalise to empty string, got %v", row["salary_currency"])
	}
}

func TestStringifyAny(t *testing.T) {
	cases := map[any]string{
		nil:          "",
		"x":          "x",
		float64(1.5): "1.5",
		int64(42):    "42",
		true:         "true",
		false:        "false",
	}
	for in, want := range cases {
		if got := stringifyAny(in); got != want {
			t.Fatalf("stringifyAny(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestMarshalUnmarshalJSON_RoundTrip(t *testing.T) {
	in := map[string]any{"query": "golang", "remote": "Remote"}
	blob, err := marshalJSON(in)
	if err != nil {
		t.Fatalf("marshalJSON: %v", err)
	}
	out, err := unmarshalJSON(blob)
	if err != nil {
		t.Fatalf("unmarshalJSON: %v", err)
	}
	if out["query"] != "golang" {
		t.Fatalf("round trip lost field, got %v", out)
	}
}

func TestUnmarshalJSON_EmptyInput(t *testing.T) {
	out, err := unmarshalJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty map, got %v", out)
	}
}

func TestClassify_Nil(t *testing.T) {
	if classify(nil) != nil {
		t.Fatal("classify(nil) should be nil")
	}
}

func TestAllowedSort(t *testing.T) {
	if !allowedSort["date_scraped"] {
		t.Fatal("expected date_scraped to be an allowed sort column")
	}
	if allowedSort["job_id; DROP TABLE jobs"] {
		t.Fatal("expected arbitrary input to be rejected as a sort column")
	}
}

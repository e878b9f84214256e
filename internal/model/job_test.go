package model

import "testing"

func TestDeriveID_StableByURL(t *testing.T) {
	a := DeriveID("RemoteOK", "https://x/y", "Different Title", "Different Co")
	b := DeriveID("RemoteOK", "https://x/y", "", "")
	if a != b {
		t.Fatalf("expected same id for same source+url, got %q vs %q", a, b)
	}
}

func TestDeriveID_FallsBackWithoutURL(t *testing.T) {
	a := DeriveID("Adzuna", "", "Go Engineer", "Acme")
	b := DeriveID("Adzuna", "", "Go Engineer", "Acme")
	if a != b {
		t.Fatalf("expected deterministic id, got %q vs %q", a, b)
	}
	c := DeriveID("Adzuna", "", "Go Engineer", "Other Co")
	if a == c {
		t.Fatalf("expected different ids for different company")
	}
}

func TestNew_SetsDefaults(t *testing.T) {
	j := New(Job{Source: "Adzuna", Title: " trimmed desc ", Description: "  hello  "})
	if j.JobID == "" {
		t.Fatal("expected JobID to be derived")
	}
	if j.Description != "hello" {
		t.Fatalf("expected trimmed description, got %q", j.Description)
	}
	if j.DateScraped.IsZero() {
		t.Fatal("expected DateScraped to be stamped")
	}
	if j.Remote != RemoteUnknown {
		t.Fatalf("expected default remote classification, got %q", j.Remote)
	}
}

func TestCSVRow_MatchesColumnOrder(t *testing.T) {
	j := New(Job{Source: "Adzuna", Title: "Go Engineer", Company: "Acme", URL: "https://x/y"})
	row := j.CSVRow()
	if len(row) != len(CSVColumns) {
		t.Fatalf("expected %d columns, got %d", len(CSVColumns), len(row))
	}
	if row[0] != j.JobID {
		t.Fatalf("expected first column to be job_id")
	}
	if row[1] != "Go Engineer" {
		t.Fatalf("expected second column to be title, got %q", row[1])
	}
}

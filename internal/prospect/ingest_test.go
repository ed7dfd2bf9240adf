package prospect

import (
	"testing"
)

func candidates(urls ...string) []*Candidate {
	out := make([]*Candidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, &Candidate{Name: "Name " + u, ProfileURL: u})
	}
	return out
}

func urlsOf(items []*Candidate) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ProfileURL)
	}
	return out
}

func TestIngestSkipsPending(t *testing.T) {
	t.Parallel()

	pending := map[string]struct{}{"A": {}, "B": {}}

	toInsert, duplicates := Ingest(candidates("A", "C"), pending)

	if got := urlsOf(toInsert); len(got) != 1 || got[0] != "C" {
		t.Fatalf("expected [C], got %v", got)
	}
	if duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", duplicates)
	}
	if len(pending) != 2 {
		t.Fatalf("pending set must not be mutated, got %v", pending)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	t.Parallel()

	collected := candidates("A", "B", "C")
	pending := map[string]struct{}{"B": {}}

	first, firstDup := Ingest(collected, pending)
	if len(first) != 2 || firstDup != 1 {
		t.Fatalf("unexpected first run: %v (%d duplicates)", urlsOf(first), firstDup)
	}

	for _, c := range first {
		pending[c.ProfileURL] = struct{}{}
	}

	second, secondDup := Ingest(collected, pending)
	if len(second) != 0 {
		t.Fatalf("expected nothing to insert on second run, got %v", urlsOf(second))
	}
	if secondDup != len(collected) {
		t.Fatalf("expected %d duplicates, got %d", len(collected), secondDup)
	}
}

func TestIngestPreservesOrder(t *testing.T) {
	t.Parallel()

	toInsert, _ := Ingest(candidates("E", "D", "X", "C", "B"), map[string]struct{}{"X": {}})

	want := []string{"E", "D", "C", "B"}
	got := urlsOf(toInsert)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestIngestRepeatedInBatchAndMissingURL(t *testing.T) {
	t.Parallel()

	collected := candidates("A", "A", "")
	collected = append(collected, nil)

	toInsert, duplicates := Ingest(collected, nil)

	if got := urlsOf(toInsert); len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected [A], got %v", got)
	}
	if duplicates != 3 {
		t.Fatalf("expected 3 dropped entries, got %d", duplicates)
	}
}

func TestIngestEmpty(t *testing.T) {
	t.Parallel()

	toInsert, duplicates := Ingest(nil, map[string]struct{}{"A": {}})
	if len(toInsert) != 0 || duplicates != 0 {
		t.Fatalf("expected empty result, got %v / %d", toInsert, duplicates)
	}
}

package prospect

import (
	"os"
	"strings"
	"testing"
)

func TestProfileTrimAndIsEmpty(t *testing.T) {
	t.Parallel()

	var nilProfile *Profile
	if !nilProfile.IsEmpty() {
		t.Fatalf("nil profile must be empty")
	}

	p := &Profile{
		About:      "   ",
		Experience: []Experience{{Title: ""}, {Title: "Staff Engineer", Company: "Acme"}},
		Skills:     []string{" Go ", ""},
		Activity: []Activity{
			{Type: "post", Content: "1"}, {Content: "2"}, {Type: "repost", Content: ""},
			{Type: "post", Content: "3"}, {Type: "post", Content: "4"}, {Type: "post", Content: "5"},
			{Type: "post", Content: "6"},
		},
	}
	p.Trim()

	if p.About != "" {
		t.Fatalf("expected about to be trimmed, got %q", p.About)
	}
	if len(p.Experience) != 1 || p.Experience[0].Title != "Staff Engineer" {
		t.Fatalf("unexpected experience: %+v", p.Experience)
	}
	if len(p.Skills) != 1 || p.Skills[0] != "Go" {
		t.Fatalf("unexpected skills: %+v", p.Skills)
	}
	if len(p.Activity) != MaxActivity {
		t.Fatalf("expected %d activity items, got %d", MaxActivity, len(p.Activity))
	}
	if p.Activity[1].Type != "unknown" {
		t.Fatalf("expected missing activity type to become unknown, got %q", p.Activity[1].Type)
	}
	if p.IsEmpty() {
		t.Fatalf("trimmed profile with experience must not be empty")
	}

	empty := &Profile{About: "\n", Skills: []string{" "}}
	empty.Trim()
	if !empty.IsEmpty() {
		t.Fatalf("expected profile with blank fields to be empty")
	}
}

func TestFirstName(t *testing.T) {
	t.Parallel()

	if got := FirstName("  Ada  Lovelace "); got != "Ada" {
		t.Fatalf("expected Ada, got %q", got)
	}
	if got := FirstName(""); got != "there" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestCandidatesExclude(t *testing.T) {
	t.Parallel()

	list := &Candidates{Items: []*Candidate{
		{ID: 1, ProfileURL: "https://example.com/in/a", ConnectionDegree: "3rd+"},
		{ID: 2, ProfileURL: "https://example.com/in/b", ConnectionDegree: "2nd"},
		{ID: 3, ProfileURL: "https://example.com/in/c"},
	}}

	excluded := list.Exclude(CandidateDegreeField, []string{"3RD+", ""})
	if len(excluded) != 1 || excluded[0] != "https://example.com/in/a" {
		t.Fatalf("unexpected excluded list: %v", excluded)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 left, got %d", list.Len())
	}

	excluded = list.Exclude(CandidateURLField, []string{"https://example.com/in/c"})
	if len(excluded) != 1 || list.Len() != 1 || list.FindByID(2) == nil {
		t.Fatalf("unexpected state after url exclusion: %v %+v", excluded, list.Items)
	}
	if list.FindByURL(" https://example.com/in/b ") == nil {
		t.Fatalf("expected lookup by url to trim input")
	}
	if _, ok := list.URLs()["https://example.com/in/b"]; !ok {
		t.Fatalf("expected url set to contain remaining candidate")
	}
}

func TestCandidatesDumpToTmpFile(t *testing.T) {
	list := &Candidates{Items: []*Candidate{{Name: "Ada", ProfileURL: "https://example.com/in/ada"}}}

	name, err := list.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	if !strings.Contains(name, "prospects_") {
		t.Fatalf("unexpected file name: %s", name)
	}
}

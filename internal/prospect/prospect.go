package prospect

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

const (
	CandidateURLField    = "ProfileURL"
	CandidateDegreeField = "ConnectionDegree"
)

type Candidates struct {
	Items []*Candidate
}

// Candidate is a record captured from a search or comments page, pending analysis.
// ProfileURL is its identity.
type Candidate struct {
	ID               int64     `json:"id,omitempty"`
	Name             string    `json:"name"`
	Headline         string    `json:"headline"`
	ProfileURL       string    `json:"profileUrl"`
	ConnectionDegree string    `json:"connectionDegree,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Profile is the raw data collected from a single profile page.
type Profile struct {
	About      string       `json:"about,omitempty"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
	Activity   []Activity   `json:"activity"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Dates       string `json:"dates,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Dates  string `json:"dates,omitempty"`
}

type Activity struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// MaxActivity is the number of recent activity items kept from a profile.
const MaxActivity = 5

// Report is the permanent outcome of one analysis.
type Report struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Headline          string    `json:"headline"`
	ProfileURL        string    `json:"profileUrl"`
	ConnectionDegree  string    `json:"connectionDegree,omitempty"`
	CapturedAt        time.Time `json:"capturedAt"`
	Goal              string    `json:"goal"`
	Score             int       `json:"score"`
	Grade             string    `json:"grade"`
	Justification     string    `json:"justification"`
	ConnectionMessage string    `json:"connectionMessage"`
	AnalyzedAt        time.Time `json:"analyzedAt"`
}

// IsEmpty reports whether nothing was extracted from the page.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return strings.TrimSpace(p.About) == "" &&
		len(p.Experience) == 0 &&
		len(p.Education) == 0 &&
		len(p.Skills) == 0 &&
		len(p.Activity) == 0
}

// Trim drops incomplete entries and caps the activity list.
func (p *Profile) Trim() {
	if p == nil {
		return
	}

	p.About = strings.TrimSpace(p.About)

	experience := p.Experience[:0]
	for _, e := range p.Experience {
		if strings.TrimSpace(e.Title) != "" {
			experience = append(experience, e)
		}
	}
	p.Experience = experience

	education := p.Education[:0]
	for _, e := range p.Education {
		if strings.TrimSpace(e.School) != "" {
			education = append(education, e)
		}
	}
	p.Education = education

	skills := p.Skills[:0]
	for _, s := range p.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	p.Skills = skills

	activity := p.Activity[:0]
	for _, a := range p.Activity {
		if strings.TrimSpace(a.Content) == "" {
			continue
		}
		if a.Type == "" {
			a.Type = "unknown"
		}
		activity = append(activity, a)
	}
	if len(activity) > MaxActivity {
		activity = activity[:MaxActivity]
	}
	p.Activity = activity
}

// FirstName returns the first word of a display name or "there" when the name is unknown.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// URLs returns the identities of all candidates as a set.
func (c *Candidates) URLs() map[string]struct{} {
	urls := make(map[string]struct{}, c.Len())
	if c == nil {
		return urls
	}
	for _, item := range c.Items {
		urls[item.ProfileURL] = struct{}{}
	}
	return urls
}

// FindByID returns the candidate with the given store id.
func (c *Candidates) FindByID(id int64) *Candidate {
	if c == nil {
		return nil
	}
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// FindByURL returns the candidate with the given identity.
func (c *Candidates) FindByURL(url string) *Candidate {
	if c == nil {
		return nil
	}
	url = strings.TrimSpace(url)
	for _, item := range c.Items {
		if item.ProfileURL == url {
			return item
		}
	}
	return nil
}

// Exclude removes candidates whose field matches one of the values and returns
// the identities of the removed ones.
func (c *Candidates) Exclude(field string, values []string) []string {
	if c == nil || len(values) == 0 {
		return nil
	}

	lookup := make(map[string]struct{}, len(values))
	for _, v := range values {
		lookup[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	var excluded []string
	kept := make([]*Candidate, 0, len(c.Items))
	for _, item := range c.Items {
		var value string
		switch field {
		case CandidateURLField:
			value = item.ProfileURL
		case CandidateDegreeField:
			value = item.ConnectionDegree
		}

		if _, ok := lookup[strings.ToLower(strings.TrimSpace(value))]; ok && value != "" {
			excluded = append(excluded, item.ProfileURL)
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept

	return excluded
}

// DumpToTmpFile writes the candidates as indented JSON to a temporary file and returns its name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "prospects_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

package prospect

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Excluded is the content of an exclude file: prospects that must never be captured again.
type Excluded struct {
	Items []*ExcludedCandidate `json:"items"`
}

type ExcludedCandidate struct {
	ProfileURL string    `json:"profileUrl"`
	Name       string    `json:"name,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excludedAt"`
}

// ToExcluded converts the candidates into exclude file entries.
func (c *Candidates) ToExcluded(reason string) *Excluded {
	excluded := &Excluded{}
	if c == nil {
		return excluded
	}
	for _, item := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ProfileURL: item.ProfileURL,
			Name:       item.Name,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// LoadExcludedFromFile reads an exclude file. A missing or empty file is an empty list.
func LoadExcludedFromFile(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Excluded{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *Excluded) Append(s *Excluded) {
	if s == nil {
		return
	}
	e.Items = append(e.Items, s.Items...)
}

func (e *Excluded) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		urls = append(urls, item.ProfileURL)
	}
	return urls
}

func (e *Excluded) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

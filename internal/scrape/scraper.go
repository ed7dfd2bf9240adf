package scrape

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/utils"
)

// DefaultSettleDelay is how long a page is given to render before extraction.
const DefaultSettleDelay = 7 * time.Second

// Source is a kind of page candidates are captured from.
type Source string

const (
	SourceSearch   Source = "search"
	SourceComments Source = "comments"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceSearch, SourceComments:
		return src, nil
	default:
		return "", fmt.Errorf("unknown capture source %q, expected %q or %q", s, SourceSearch, SourceComments)
	}
}

//go:embed scripts/*.js
var builtinScripts embed.FS

// Scripts holds paths of extraction scripts that replace the built-in ones.
// Empty paths keep the built-in script.
type Scripts struct {
	Profile  string `mapstructure:"profile"`
	Search   string `mapstructure:"search"`
	Comments string `mapstructure:"comments"`
}

// ProfileScraper extracts raw profile data from a loaded profile page.
type ProfileScraper interface {
	ScrapeProfile(ctx context.Context, page Page) (*prospect.Profile, error)
}

// CandidateScraper extracts candidate records from a search or comments page.
type CandidateScraper interface {
	ScrapeCandidates(ctx context.Context, page Page, source Source) ([]*prospect.Candidate, error)
}

// ScriptScraper runs JavaScript extraction scripts in the page.
type ScriptScraper struct {
	scripts     map[string]string
	settleDelay time.Duration
	logger      *zap.Logger
}

var (
	_ ProfileScraper   = (*ScriptScraper)(nil)
	_ CandidateScraper = (*ScriptScraper)(nil)
)

// NewScriptScraper loads the extraction scripts. A negative settle delay
// disables waiting, zero selects DefaultSettleDelay.
func NewScriptScraper(overrides Scripts, settleDelay time.Duration, logger *zap.Logger) (*ScriptScraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settleDelay == 0 {
		settleDelay = DefaultSettleDelay
	}

	scripts := make(map[string]string, 3)
	for name, override := range map[string]string{
		"profile":              overrides.Profile,
		string(SourceSearch):   overrides.Search,
		string(SourceComments): overrides.Comments,
	} {
		script, err := loadScript(name, override)
		if err != nil {
			return nil, err
		}
		scripts[name] = script
	}

	return &ScriptScraper{scripts: scripts, settleDelay: settleDelay, logger: logger}, nil
}

func loadScript(name, override string) (string, error) {
	var (
		data []byte
		err  error
	)
	if override = strings.TrimSpace(override); override != "" {
		data, err = os.ReadFile(override)
	} else {
		data, err = builtinScripts.ReadFile("scripts/" + name + ".js")
	}
	if err != nil {
		return "", fmt.Errorf("load %s script: %w", name, err)
	}

	script := strings.TrimSpace(string(data))
	if script == "" {
		return "", fmt.Errorf("%s script is empty", name)
	}
	return script, nil
}

// ScrapeProfile waits for the page to settle and extracts the profile.
// It returns ErrNoResults when no section of the profile was found.
func (s *ScriptScraper) ScrapeProfile(ctx context.Context, page Page) (*prospect.Profile, error) {
	var raw map[string]any
	if err := s.run(ctx, page, "profile", &raw); err != nil {
		return nil, err
	}

	profile := &prospect.Profile{}
	if err := decode(raw, profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	profile.Trim()
	if profile.IsEmpty() {
		return nil, ErrNoResults
	}

	s.logger.Debug("profile scraped",
		zap.String("url", page.URL()),
		zap.Int("experience", len(profile.Experience)),
		zap.Int("education", len(profile.Education)),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("activity", len(profile.Activity)),
	)
	return profile, nil
}

// ScrapeCandidates waits for the page to settle and extracts every candidate
// with a name and a profile url.
func (s *ScriptScraper) ScrapeCandidates(ctx context.Context, page Page, source Source) ([]*prospect.Candidate, error) {
	if _, err := ParseSource(string(source)); err != nil {
		return nil, err
	}

	var raw []any
	if err := s.run(ctx, page, string(source), &raw); err != nil {
		return nil, err
	}

	var decoded []*prospect.Candidate
	if err := decode(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	candidates := make([]*prospect.Candidate, 0, len(decoded))
	for _, c := range decoded {
		if c == nil {
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		c.Headline = strings.TrimSpace(c.Headline)
		c.ProfileURL = strings.TrimSpace(c.ProfileURL)
		c.ConnectionDegree = strings.TrimSpace(c.ConnectionDegree)
		if c.Name == "" || c.ProfileURL == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, ErrNoResults
	}

	s.logger.Debug("candidates scraped",
		zap.String("url", page.URL()),
		zap.String("source", string(source)),
		zap.Int("count", len(candidates)),
	)
	return candidates, nil
}

func (s *ScriptScraper) run(ctx context.Context, page Page, name string, out any) error {
	if page == nil {
		return fmt.Errorf("page is required")
	}

	if err := utils.WaitFor(ctx, s.settleDelay); err != nil {
		return fmt.Errorf("wait for page to settle: %w", err)
	}

	if err := page.Evaluate(ctx, s.scripts[name], out); err != nil {
		return fmt.Errorf("run %s script: %w", name, err)
	}
	return nil
}

func decode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

package ai

import (
	"context"
	"errors"
	"regexp"

	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/settings"
)

// NamePlaceholder is the token the model is asked to use in place of the prospect's name.
const NamePlaceholder = "[Prospect Name]"

var (
	// ErrMissingCredential is returned before any network call when no api key is configured.
	ErrMissingCredential = errors.New("gemini api key is not configured in settings")
	// ErrMalformedResponse is returned when the model output does not have the expected shape.
	ErrMalformedResponse = errors.New("ai returned an invalid response")
)

var placeholderRe = regexp.MustCompile(`(?i)\[prospect name\]`)

type Judgment struct {
	Components        scoring.Components
	Justification     string
	ConnectionMessage string
	Raw               string
}

// Judge evaluates raw profile data against the user's settings.
type Judge interface {
	Judge(ctx context.Context, profile *prospect.Profile, cfg settings.Config) (*Judgment, error)
}

// Personalize replaces every name placeholder in message with the first name of name.
func Personalize(message, name string) string {
	return placeholderRe.ReplaceAllLiteralString(message, prospect.FirstName(name))
}

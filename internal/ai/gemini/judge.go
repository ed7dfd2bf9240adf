package gemini

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/ai"
	"github.com/spigell/prospector/internal/logger"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/settings"
	"github.com/spigell/prospector/internal/utils"
)

const provider = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// GeneratorFactory builds a generator for one api key.
type GeneratorFactory func(ctx context.Context, apiKey string) (contentGenerator, error)

// Judge scores profiles with Gemini. Generators are created lazily per api key
// because the key lives in the user's settings and may change between analyses.
type Judge struct {
	newGenerator GeneratorFactory
	logger       *zap.Logger
	maxLogLen    int

	mu         sync.RWMutex
	generators map[string]contentGenerator
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var _ ai.Judge = (*Judge)(nil)

// NewJudge returns a Judge that talks to the given Gemini model.
func NewJudge(model string, logger *zap.Logger, maxLogLength int) *Judge {
	factory := func(ctx context.Context, apiKey string) (contentGenerator, error) {
		return NewGenerator(ctx, apiKey, model)
	}
	return newJudge(factory, logger, maxLogLength)
}

func newJudge(factory GeneratorFactory, log *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Judge{
		newGenerator: factory,
		logger:       log,
		maxLogLen:    maxLogLength,
		generators:   make(map[string]contentGenerator),
	}
}

// Judge sends the profile and the user's settings to Gemini and returns the
// clamped score components. It fails with ai.ErrMissingCredential before any
// network traffic when the settings carry no api key.
func (j *Judge) Judge(ctx context.Context, profile *prospect.Profile, cfg settings.Config) (*ai.Judgment, error) {
	if !cfg.HasCredential() {
		return nil, ai.ErrMissingCredential
	}
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	generator, err := j.generatorFor(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	prompt := buildPrompt(cfg, string(profileJSON))
	log := logger.WithCommonFields(j.logger, provider, generator.Model())

	log.Debug("gemini generate content request",
		zap.String(logger.FieldGoal, string(cfg.Goal)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	judgment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	judgment.Raw = raw
	return judgment, nil
}

func (j *Judge) generatorFor(ctx context.Context, apiKey string) (contentGenerator, error) {
	key := cacheKey(apiKey)

	j.mu.RLock()
	generator, ok := j.generators[key]
	j.mu.RUnlock()
	if ok {
		return generator, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if generator, ok := j.generators[key]; ok {
		return generator, nil
	}

	generator, err := j.newGenerator(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	j.generators[key] = generator
	return generator, nil
}

func cacheKey(apiKey string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(apiKey)))
	return hex.EncodeToString(sum[:])
}

func buildPrompt(cfg settings.Config, profileJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Goal: {{GOAL}}\n\nProfile:\n{{PROFILE_JSON}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{USER_TITLE}}", orNone(cfg.Profile.Title),
		"{{USER_INDUSTRY}}", orNone(cfg.Profile.Industry),
		"{{USER_SKILLS}}", orNone(cfg.Profile.Skills),
		"{{GOAL}}", string(cfg.Goal),
		"{{PROFILE_JSON}}", profileJSON,
	)
	return replacer.Replace(template)
}

func orNone(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "none"
	}
	return s
}

func parseResponse(raw string) (*ai.Judgment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	components, ok := data["score_components"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: score_components is missing", ai.ErrMalformedResponse)
	}

	var values [3]float64
	for i, name := range []string{"role_fit", "skill_overlap", "seniority_match"} {
		v := coerceFloat(components[name])
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s is not a number", ai.ErrMalformedResponse, name)
		}
		values[i] = clampComponent(v)
	}

	message := coerceString(data["connection_message"])
	if message == "" {
		return nil, fmt.Errorf("%w: connection_message is missing", ai.ErrMalformedResponse)
	}

	return &ai.Judgment{
		Components: scoring.Components{
			RoleFit:        values[0],
			SkillOverlap:   values[1],
			SeniorityMatch: values[2],
		},
		Justification:     coerceString(data["justification"]),
		ConnectionMessage: message,
	}, nil
}

func clampComponent(v float64) float64 {
	return math.Min(scoring.MaxComponent, math.Max(0, v))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

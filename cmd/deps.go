package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/ai"
	"github.com/spigell/prospector/internal/ai/gemini"
	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/logger"
	"github.com/spigell/prospector/internal/scrape"
	"github.com/spigell/prospector/internal/secrets"
	"github.com/spigell/prospector/internal/settings"
	"github.com/spigell/prospector/internal/store"
)

// setup reads the config and builds the logger. The terminal UI logs to the configured file.
func setup(logToFile bool) (*Config, *zap.Logger) {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	output := ""
	if logToFile {
		output = config.LogFile
	}

	logger, err := logger.NewWithOutput(viper.GetBool("json"), viper.GetBool("debug"), output)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Debug("starting with config", zap.Any("config", config))

	return config, logger
}

func openStore(config *Config) (*store.SQLiteStore, error) {
	path := strings.TrimSpace(config.DB)
	if path == "" {
		return nil, errors.New("database path is required (set db or PROSPECTOR_DB)")
	}
	return store.NewSQLiteStore(path)
}

// settingsStorage returns the settings file store. A key from ai.gemini.api-key-file,
// GEMINI_API_KEY_FILE or GEMINI_API_KEY is used when the settings carry none.
func settingsStorage(config *Config) (*settings.KeyedStore, error) {
	key, err := secrets.Optional(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (check ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return settings.WithFallbackKey(settings.NewStore(config.Settings), key), nil
}

func newBrowser(config *Config, logger *zap.Logger) (*scrape.Chrome, error) {
	b := config.Browser
	return scrape.NewChrome(scrape.ChromeConfig{
		UserDataDir:       b.UserDataDir,
		ExecPath:          b.ExecPath,
		Headless:          b.Headless,
		UserAgent:         b.UserAgent,
		NavigationTimeout: b.NavigationTimeout,
	}, logger.With(zap.String("component", "browser")))
}

func newScraper(config *Config, logger *zap.Logger) (*scrape.ScriptScraper, error) {
	return scrape.NewScriptScraper(config.Scripts, config.Browser.SettleDelay, logger.With(zap.String("component", "scraper")))
}

func newJudge(config *AIConfig, logger *zap.Logger) (ai.Judge, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	return gemini.NewJudge(config.Gemini.Model, logger, config.Gemini.MaxLogLength), nil
}

// eventLogger publishes orchestrator events to the log for the one-shot commands.
type eventLogger struct {
	logger *zap.Logger
}

func (l eventLogger) Publish(evt bus.Event) {
	switch e := evt.(type) {
	case bus.StatusUpdate:
		l.logger.Info(e.Status)
	case bus.AnalysisError:
		l.logger.Warn("analysis error", zap.String("error", e.Message))
	default:
		l.logger.Debug("event", zap.String("type", string(evt.Type())))
	}
}

package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/prospector/internal/ai/gemini"
	"github.com/spigell/prospector/internal/scrape"
)

const (
	app = "prospector"
)

type Config struct {
	DB          string         `mapstructure:"db"`
	Settings    string         `mapstructure:"settings"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	LogFile     string         `mapstructure:"log-file"`
	Browser     *BrowserConfig `mapstructure:"browser"`
	Scripts     scrape.Scripts `mapstructure:"scripts"`
	Capture     *CaptureConfig `mapstructure:"capture"`
	AI          *AIConfig      `mapstructure:"ai"`
}

type BrowserConfig struct {
	UserDataDir       string        `mapstructure:"user-data-dir"`
	ExecPath          string        `mapstructure:"exec-path"`
	Headless          bool          `mapstructure:"headless"`
	UserAgent         string        `mapstructure:"user-agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation-timeout"`
	SettleDelay       time.Duration `mapstructure:"settle-delay"`
}

type CaptureConfig struct {
	ExcludeDegrees []string `mapstructure:"exclude-degrees"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "prospector collects prospects from a professional network and scores them with AI",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("db", "PROSPECTOR_DB"); err != nil {
		log.Fatalf("binding PROSPECTOR_DB environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("db", app+".db")
	viper.SetDefault("settings", app+"-settings.yaml")
	viper.SetDefault("log-file", app+".log")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.max-log-length", 2048)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is prospector.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (env PROSPECTOR_DB)")
	rootCmd.PersistentFlags().String("log-file", "", "log file used while the terminal UI is running")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless given explicitly. We can't proceed if it is parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Browser == nil {
		config.Browser = &BrowserConfig{}
	}
	if config.Capture == nil {
		config.Capture = &CaptureConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/settings"
)

const (
	PromptTitle    = "Title"
	PromptIndustry = "Industry"
	PromptSkills   = "Skills"
	PromptAPIKey   = "Gemini API key"
	PromptGoal     = "Analysis goal"
	PromptSave     = "Save and exit"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or edit the user profile, api key and analysis goal",
	Run: func(cmd *cobra.Command, _ []string) {
		editSettings(cmd)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.Flags().String("title", "", "your title")
	settingsCmd.Flags().String("industry", "", "your industry")
	settingsCmd.Flags().String("skills", "", "comma separated skills or services")
	settingsCmd.Flags().String("goal", "", fmt.Sprintf("analysis goal, one of: %s", goalNames()))
	settingsCmd.Flags().Bool("show", false, "print the current settings and exit")
}

func editSettings(cmd *cobra.Command) {
	config, logger := setup(false)
	defer logger.Sync()

	store := settings.NewStore(config.Settings)

	cfg, err := store.Load()
	if err != nil {
		logger.Fatal("loading settings", zap.Error(err))
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		printSettings(logger, store.Path(), cfg)
		return
	}

	changed, err := applySettingsFlags(cmd, &cfg)
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	if !changed {
		if err := promptSettings(&cfg); err != nil {
			if errors.Is(err, errExit) {
				logger.Info("exiting", zap.String("reason", "settings were not saved"))
				return
			}
			logger.Fatal("editing settings", zap.Error(err))
		}
	}

	if err := store.Save(cfg); err != nil {
		logger.Fatal("saving settings", zap.Error(err))
	}

	printSettings(logger, store.Path(), cfg)
}

func applySettingsFlags(cmd *cobra.Command, cfg *settings.Config) (bool, error) {
	changed := false
	for name, field := range map[string]*string{
		"title":    &cfg.Profile.Title,
		"industry": &cfg.Profile.Industry,
		"skills":   &cfg.Profile.Skills,
	} {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
			changed = true
		}
	}

	if cmd.Flags().Changed("goal") {
		value, _ := cmd.Flags().GetString("goal")
		goal, ok := scoring.ParseGoal(value)
		if !ok {
			return false, fmt.Errorf("unknown goal %q, expected one of: %s", value, goalNames())
		}
		cfg.Goal = goal
		changed = true
	}

	return changed, nil
}

// promptSettings edits cfg in place until the user saves or leaves.
func promptSettings(cfg *settings.Config) error {
	for {
		fields := promptui.Select{
			Label: "Choose a setting and press ENTER",
			Items: []string{
				fmt.Sprintf("%s: %s", PromptTitle, cfg.Profile.Title),
				fmt.Sprintf("%s: %s", PromptIndustry, cfg.Profile.Industry),
				fmt.Sprintf("%s: %s", PromptSkills, cfg.Profile.Skills),
				fmt.Sprintf("%s: %s", PromptAPIKey, maskKey(cfg.APIKey)),
				fmt.Sprintf("%s: %s", PromptGoal, cfg.Goal),
				PromptSave,
				PromptBack,
			},
		}

		_, selected, err := fields.Run()
		if err != nil {
			return err
		}

		field, _, _ := strings.Cut(selected, ":")
		switch field {
		case PromptTitle:
			err = promptText(PromptTitle, &cfg.Profile.Title, false)
		case PromptIndustry:
			err = promptText(PromptIndustry, &cfg.Profile.Industry, false)
		case PromptSkills:
			err = promptText(PromptSkills, &cfg.Profile.Skills, false)
		case PromptAPIKey:
			err = promptText(PromptAPIKey, &cfg.APIKey, true)
		case PromptGoal:
			err = promptGoal(cfg)
		case PromptSave:
			return nil
		case PromptBack:
			return errExit
		}
		if err != nil {
			return err
		}
	}
}

func promptText(label string, value *string, secret bool) error {
	p := promptui.Prompt{
		Label:     label,
		Default:   *value,
		AllowEdit: true,
	}
	if secret {
		p.Mask = '*'
		p.Default = ""
		p.AllowEdit = false
	}

	result, err := p.Run()
	if err != nil {
		return err
	}

	result = strings.TrimSpace(result)
	if secret && result == "" {
		return nil
	}
	*value = result
	return nil
}

func promptGoal(cfg *settings.Config) error {
	goals := scoring.Goals()
	cursor := 0
	for i, g := range goals {
		if g == cfg.Goal {
			cursor = i
		}
	}

	p := promptui.Select{
		Label:     PromptGoal,
		Items:     goals,
		CursorPos: cursor,
	}

	idx, _, err := p.Run()
	if err != nil {
		return err
	}
	cfg.Goal = goals[idx]
	return nil
}

func printSettings(logger *zap.Logger, path string, cfg settings.Config) {
	logger.Info("settings",
		zap.String("file", path),
		zap.String("title", cfg.Profile.Title),
		zap.String("industry", cfg.Profile.Industry),
		zap.String("skills", cfg.Profile.Skills),
		zap.String("api_key", maskKey(cfg.APIKey)),
		zap.String("goal", string(cfg.Goal)),
	)
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func goalNames() string {
	goals := scoring.Goals()
	names := make([]string, 0, len(goals))
	for _, g := range goals {
		names = append(names, string(g))
	}
	return strings.Join(names, ", ")
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/store"
)

const (
	PromptProspectsToFile     = "Dump prospects to file"
	PromptAppendToExcludeFile = "Append all prospects to exclude file"
	PromptClearAll            = "Clear all pending prospects"
	PromptExit                = "Exit"
)

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "List pending prospects and manage them",
	Run: func(cmd *cobra.Command, _ []string) {
		prospects(cmd)
	},
}

func init() {
	rootCmd.AddCommand(prospectsCmd)

	prospectsCmd.Flags().Bool("clear", false, "remove all pending prospects after confirmation")
	prospectsCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation when clearing")
}

func prospects(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := setup(false)
	defer logger.Sync()

	db, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	pending, err := db.ListCandidates(ctx)
	if err != nil {
		logger.Fatal("listing pending prospects", zap.Error(err))
	}

	for _, c := range pending.Items {
		logger.Info(candidateLabel(c), zap.Time("captured_at", c.CreatedAt))
	}
	logger.Info("current list of prospects", zap.Int("count", pending.Len()))

	if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
		autoApprove, _ := cmd.Flags().GetBool("auto-approve")
		if err := clearProspects(ctx, db, logger, pending, autoApprove); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("clearing prospects", zap.Error(err))
		}
		return
	}

	if pending.Len() == 0 {
		return
	}

	items := []string{PromptProspectsToFile, PromptClearAll, PromptExit}
	if config.ExcludeFile != "" {
		items = []string{PromptProspectsToFile, PromptAppendToExcludeFile, PromptClearAll, PromptExit}
	}

	actions := promptui.Select{
		Label: "What next?",
		Items: items,
	}

	for {
		_, action, err := actions.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleProspectsAction(ctx, action, db, logger, config, pending); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleProspectsAction(ctx context.Context, action string, db *store.SQLiteStore, logger *zap.Logger, config *Config, pending *prospect.Candidates) error {
	switch action {
	case PromptProspectsToFile:
		filename, err := pending.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump prospects to file: %w", err)
		}
		logger.Info("dumping prospects to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excluded, err := prospect.LoadExcludedFromFile(config.ExcludeFile)
		if err != nil {
			return err
		}

		excluded.Append(pending.ToExcluded("excluded manually"))

		if err = excluded.ToFile(config.ExcludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", config.ExcludeFile), zap.Int("count", pending.Len()))
		return nil
	case PromptClearAll:
		if err := clearProspects(ctx, db, logger, pending, false); err != nil {
			return err
		}
		return errExit
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func clearProspects(ctx context.Context, db *store.SQLiteStore, logger *zap.Logger, pending *prospect.Candidates, autoApprove bool) error {
	if pending.Len() == 0 {
		logger.Info("nothing to clear")
		return nil
	}

	if !autoApprove {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Remove all %d pending prospects", pending.Len()),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return errExit
			}
			return err
		}
	}

	removed, err := db.ClearCandidates(ctx)
	if err != nil {
		return err
	}

	logger.Info("cleared pending prospects", zap.Int64("count", removed))
	return nil
}

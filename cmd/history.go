package cmd

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored analysis reports",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int64("id", 0, "show the full report with this id")
	historyCmd.Flags().Bool("raw", false, "print reports as json")
}

func history(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := setup(false)
	defer logger.Sync()

	db, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	raw, _ := cmd.Flags().GetBool("raw")

	if id, _ := cmd.Flags().GetInt64("id"); id != 0 {
		report, err := db.GetReport(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			logger.Fatal("no such report", zap.Int64("id", id))
		}
		if err != nil {
			logger.Fatal("loading the report", zap.Error(err))
		}

		if raw {
			pretty, _ := json.MarshalIndent(report, "", "  ")
			logger.Info(string(pretty))
			return
		}
		printReport(logger, report)
		return
	}

	reports, err := db.ListReports(ctx)
	if err != nil {
		logger.Fatal("listing reports", zap.Error(err))
	}

	if raw {
		pretty, _ := json.MarshalIndent(reports, "", "  ")
		logger.Info(string(pretty), zap.Int("reports count", len(reports)))
		return
	}

	for _, r := range reports {
		logger.Info(r.Name,
			zap.Int64("id", r.ID),
			zap.String("grade", r.Grade),
			zap.Int("score", r.Score),
			zap.String("goal", r.Goal),
			zap.Time("analyzed_at", r.AnalyzedAt),
		)
	}
	logger.Info("reports", zap.Int("count", len(reports)))
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/filtering"
	"github.com/spigell/prospector/internal/metrics"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scrape"
	"github.com/spigell/prospector/internal/store"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Collect prospects from a search results or post comments page",
	Run: func(cmd *cobra.Command, _ []string) {
		capture(cmd)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringP("url", "u", "", "page to collect prospects from")
	captureCmd.Flags().StringP("source", "s", string(scrape.SourceSearch), "kind of page: search or comments")
	captureCmd.Flags().BoolP("include-reported", "f", false, "do not exclude prospects that already have a report")
	captureCmd.Flags().StringP("exclude-file", "e", "", "special file with prospects to exclude. Default is unset.")
	captureCmd.Flags().StringSlice("exclude-degree", nil, "connection degrees to skip, e.g. 1st")

	captureCmd.MarkFlagRequired("url")

	viper.BindPFlag("exclude-file", captureCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("capture.exclude-degrees", captureCmd.Flags().Lookup("exclude-degree"))
}

func capture(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup(false)
	defer logger.Sync()

	flagSource, _ := cmd.Flags().GetString("source")
	source, err := scrape.ParseSource(flagSource)
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}
	url, _ := cmd.Flags().GetString("url")

	db, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	chrome, err := newBrowser(config, logger)
	if err != nil {
		logger.Fatal("starting the browser", zap.Error(err))
	}
	defer chrome.Close()

	scraper, err := newScraper(config, logger)
	if err != nil {
		logger.Fatal("loading extraction scripts", zap.Error(err))
	}

	m := metrics.New(nil)
	browser := scrape.Observe(chrome, m)

	logger.Info("collecting prospects", zap.String("url", url), zap.String("source", string(source)))

	var collected []*prospect.Candidate
	err = scrape.WithPage(ctx, browser, url, func(ctx context.Context, page scrape.Page) error {
		var err error
		collected, err = scraper.ScrapeCandidates(ctx, page, source)
		return err
	})
	if err != nil {
		logger.Fatal("collecting prospects", zap.Error(err))
	}

	logger.Info("collected prospects", zap.Int("count", len(collected)))

	filters := prepareFilters(cmd, config, db, logger)

	left, results, err := filters.RunFilters(ctx, &prospect.Candidates{Items: collected})
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if err := db.InsertCandidates(ctx, left.Items); err != nil {
		logger.Fatal("saving prospects", zap.Error(err))
	}

	duplicates := filtering.Dropped(results, filtering.PendingName)
	m.ObserveCapture(left.Len(), duplicates)

	logger.Info(fmt.Sprintf("%d new prospects added (%d duplicates were ignored)", left.Len(), duplicates))
}

func prepareFilters(cmd *cobra.Command, config *Config, db *store.SQLiteStore, logger *zap.Logger) *filtering.Filtering {
	includeReported, _ := cmd.Flags().GetBool("include-reported")

	steps := []filtering.Filter{
		filtering.NewPending(&filtering.PendingDeps{Store: db, Logger: logger}),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewExcludedDegrees(config.Capture.ExcludeDegrees, logger),
		filtering.NewReported(&filtering.ReportedConfig{Ignore: includeReported}, &filtering.ReportedDeps{
			Store:  db,
			Logger: logger,
		}),
	}

	return filtering.New(steps, logger)
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/orchestrator"
	"github.com/spigell/prospector/internal/prospect"
)

const (
	PromptYes  = "Yes"
	PromptNo   = "No"
	PromptBack = "back"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scrape one prospect, review the data and score it with AI",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("url", "u", "", "profile url to analyze. Pending prospects are offered when unset.")
	analyzeCmd.Flags().StringP("name", "n", "", "prospect name used for the greeting when the url is not pending")
	analyzeCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation after scraping")
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup(false)
	defer logger.Sync()

	db, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	prefs, err := settingsStorage(config)
	if err != nil {
		logger.Fatal("loading the api key", zap.Error(err))
	}

	cfg, err := prefs.Load()
	if err != nil {
		logger.Fatal("loading settings", zap.Error(err))
	}

	if !cfg.HasCredential() {
		logger.Warn("no gemini api key configured, the AI step will fail",
			zap.String("hint", "run `prospector settings` or set GEMINI_API_KEY_FILE"),
		)
	}

	pending, err := db.ListCandidates(ctx)
	if err != nil {
		logger.Fatal("listing pending prospects", zap.Error(err))
	}

	url, _ := cmd.Flags().GetString("url")
	name, _ := cmd.Flags().GetString("name")

	candidate, err := pickCandidate(pending, url, name)
	if err != nil {
		if errors.Is(err, errExit) {
			return
		}
		logger.Fatal("choosing a prospect", zap.Error(err))
	}

	browser, err := newBrowser(config, logger)
	if err != nil {
		logger.Fatal("starting the browser", zap.Error(err))
	}
	defer browser.Close()

	scraper, err := newScraper(config, logger)
	if err != nil {
		logger.Fatal("loading extraction scripts", zap.Error(err))
	}

	judge, err := newJudge(config.AI, logger)
	if err != nil {
		logger.Fatal("building the ai judge", zap.Error(err))
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Browser:   browser,
		Scraper:   scraper,
		Judge:     judge,
		Store:     db,
		Publisher: eventLogger{logger: logger},
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("creating the orchestrator", zap.Error(err))
	}

	ready, err := orch.BeginAnalysis(ctx, *candidate, cfg)
	if err != nil {
		logger.Fatal("scraping the profile", zap.Error(err))
	}

	// do not bother error since the profile is a plain struct
	pretty, _ := json.MarshalIndent(ready.Profile, "", "  ")
	logger.Info(fmt.Sprintf("scraped profile of %s:\n%s", candidate.Name, pretty))

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if !autoApprove {
		confirm := promptui.Select{
			Label: "Proceed with AI analysis?",
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	id, err := orch.ConfirmAnalysis(ctx, ready.Generation)
	if err != nil {
		var persistence *orchestrator.PersistenceError
		if !errors.As(err, &persistence) || persistence.ReportID == 0 {
			logger.Fatal("analysis failed", zap.Error(err))
		}
		logger.Warn("report saved, prospect is still pending", zap.Error(err))
	}

	report, err := db.GetReport(ctx, id)
	if err != nil {
		logger.Fatal("loading the report", zap.Error(err))
	}

	printReport(logger, report)
}

// pickCandidate returns the pending candidate for url or lets the user choose one.
// A url that is not pending yields an ad hoc candidate without an id.
func pickCandidate(pending *prospect.Candidates, url, name string) (*prospect.Candidate, error) {
	if url = strings.TrimSpace(url); url != "" {
		if c := pending.FindByURL(url); c != nil {
			return c, nil
		}
		return &prospect.Candidate{Name: strings.TrimSpace(name), ProfileURL: url}, nil
	}

	if pending.Len() == 0 {
		return nil, errors.New("there are no pending prospects, run `prospector capture` first or pass --url")
	}

	items := make([]string, 0, pending.Len()+1)
	for _, c := range pending.Items {
		items = append(items, candidateLabel(c))
	}

	selectPrompt := promptui.Select{
		Label: "Choose a prospect and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	idx, selected, err := selectPrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, errExit
	}

	return pending.Items[idx], nil
}

func candidateLabel(c *prospect.Candidate) string {
	label := fmt.Sprintf("%d %s / %s / %s", c.ID, c.Name, c.Headline, c.ProfileURL)
	if c.ConnectionDegree != "" {
		label += " (" + c.ConnectionDegree + ")"
	}
	return label
}

func printReport(logger *zap.Logger, r *prospect.Report) {
	logger.Info("report",
		zap.Int64("id", r.ID),
		zap.String("name", r.Name),
		zap.String("profile_url", r.ProfileURL),
		zap.String("goal", r.Goal),
		zap.Int("score", r.Score),
		zap.String("grade", r.Grade),
		zap.Time("analyzed_at", r.AnalyzedAt),
	)
	logger.Info("justification: " + r.Justification)
	logger.Info("connection message: " + r.ConnectionMessage)
}

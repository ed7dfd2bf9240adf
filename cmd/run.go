package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/metrics"
	"github.com/spigell/prospector/internal/orchestrator"
	"github.com/spigell/prospector/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the terminal UI with the background orchestrator",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090. Default is unset.")

	viper.BindPFlag("metrics-addr", runCmd.Flags().Lookup("metrics-addr"))
}

// run is the main command for the cli.
func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup(true)
	defer logger.Sync()

	logger.Info("starting the prospector", zap.String("version", currentVersion()))

	db, err := openStore(config)
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	prefs, err := settingsStorage(config)
	if err != nil {
		logger.Fatal("loading the api key", zap.Error(err))
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

	m := metrics.New(nil)

	b := bus.New(bus.Config{Logger: logger.With(zap.String("component", "bus"))})
	defer b.Close()

	commands, unsubscribe := b.Subscribe()
	defer unsubscribe()
	events, unsubscribeUI := b.Subscribe()
	defer unsubscribeUI()

	orch, err := orchestrator.New(orchestrator.Config{
		Browser:   browser,
		Scraper:   scraper,
		Judge:     judge,
		Store:     db,
		Publisher: b,
		Metrics:   m,
		Logger:    logger.With(zap.String("component", "orchestrator")),
	})
	if err != nil {
		logger.Fatal("creating the orchestrator", zap.Error(err))
	}

	go func() {
		if err := orch.Run(ctx, commands); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("orchestrator stopped", zap.Error(err))
		}
	}()

	if addr := viper.GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	model := ui.NewModel(ui.Options{
		Controller: ui.NewController(b),
		Store:      db,
		Settings:   prefs,
		Events:     events,
	})

	if err := ui.Run(ctx, model); err != nil {
		logger.Error("terminal ui", zap.Error(err))
		return
	}

	logger.Info("exiting", zap.String("reason", "user quit"))
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	return srv
}

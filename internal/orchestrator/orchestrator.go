// Package orchestrator drives one prospect through scrape, review, AI judgment and persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/ai"
	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/logger"
	"github.com/spigell/prospector/internal/metrics"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/scrape"
	"github.com/spigell/prospector/internal/settings"
)

// StatusAnalyzing is published right before the AI call.
const StatusAnalyzing = "Analyzing with AI..."

// Store is the part of the persistent store the pipeline writes to.
type Store interface {
	InsertReport(ctx context.Context, r *prospect.Report) (int64, error)
	DeleteCandidate(ctx context.Context, id int64) error
}

type Config struct {
	Browser   scrape.Browser
	Scraper   scrape.ProfileScraper
	Judge     ai.Judge
	Store     Store
	Publisher bus.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Session is the single in-flight analysis. Profile stays nil until the scrape succeeds.
type Session struct {
	Generation uint64
	Candidate  prospect.Candidate
	Config     settings.Config
	Profile    *prospect.Profile
}

func (s *Session) ready() bool {
	return s != nil && s.Generation != 0 && s.Candidate.ProfileURL != "" && s.Profile != nil
}

// Orchestrator owns the analysis session slot.
type Orchestrator struct {
	browser   scrape.Browser
	scraper   scrape.ProfileScraper
	judge     ai.Judge
	store     Store
	publisher bus.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	generation uint64
	session    *Session
}

func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Browser == nil:
		return nil, errors.New("browser is required")
	case cfg.Scraper == nil:
		return nil, errors.New("profile scraper is required")
	case cfg.Judge == nil:
		return nil, errors.New("ai judge is required")
	case cfg.Store == nil:
		return nil, errors.New("store is required")
	case cfg.Publisher == nil:
		return nil, errors.New("publisher is required")
	}

	browser := cfg.Browser
	if cfg.Metrics != nil {
		browser = scrape.Observe(browser, cfg.Metrics)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		browser:   browser,
		scraper:   cfg.Scraper,
		judge:     cfg.Judge,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    log,
		now:       now,
	}, nil
}

// Run processes commands from events one at a time until ctx is done or events is closed.
func (o *Orchestrator) Run(ctx context.Context, events <-chan bus.Event) error {
	o.logger.Info("orchestrator started")
	defer o.logger.Info("orchestrator stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			switch cmd := evt.(type) {
			case bus.AnalyzeProspect:
				_, _ = o.BeginAnalysis(ctx, cmd.Candidate, cmd.Config)
			case bus.ProceedWithAI:
				_, _ = o.ConfirmAnalysis(ctx, cmd.Generation)
			}
		}
	}
}

// Session returns a copy of the current session, or nil.
func (o *Orchestrator) Session() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	s := *o.session
	return &s
}

// BeginAnalysis replaces the session with a new one for candidate, scrapes the
// profile in an ephemeral page and publishes ScrapeReady for review.
func (o *Orchestrator) BeginAnalysis(ctx context.Context, candidate prospect.Candidate, cfg settings.Config) (*bus.ScrapeReady, error) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.session = &Session{Generation: gen, Candidate: candidate, Config: cfg}
	o.mu.Unlock()

	log := logger.WithSession(o.logger, gen, candidate.ProfileURL, string(cfg.Goal))
	o.metrics.AnalysisBegun()
	log.Info("analysis started")

	var profile *prospect.Profile
	err := scrape.WithPage(ctx, o.browser, candidate.ProfileURL, func(ctx context.Context, page scrape.Page) error {
		var err error
		profile, err = o.scraper.ScrapeProfile(ctx, page)
		return err
	})
	if err == nil && profile.IsEmpty() {
		err = scrape.ErrNoResults
	}
	if err != nil {
		if !o.clear(gen) {
			return nil, o.drop(log, err)
		}
		return nil, o.fail(log, metrics.KindScrape, &ScrapeError{URL: candidate.ProfileURL, Err: err})
	}

	o.mu.Lock()
	current := o.session != nil && o.session.Generation == gen
	if current {
		o.session.Profile = profile
	}
	o.mu.Unlock()

	if !current {
		return nil, o.drop(log, nil)
	}

	ready := bus.ScrapeReady{Generation: gen, Candidate: candidate, Profile: *profile}
	o.publisher.Publish(ready)
	log.Info("profile ready for review")

	return &ready, nil
}

// ConfirmAnalysis runs the AI judgment for the session with the given
// generation and stores the resulting report.
func (o *Orchestrator) ConfirmAnalysis(ctx context.Context, generation uint64) (int64, error) {
	o.mu.Lock()
	s := o.session
	switch {
	case s == nil:
	case s.Generation != generation:
		// Stale token: reported as superseded even while the newer session scrapes.
	case !s.ready():
		s = nil
	default:
		// Consumed: a repeated confirmation finds no session.
		o.session = nil
	}
	o.mu.Unlock()

	if s == nil {
		return 0, o.fail(o.logger, metrics.KindSession, ErrSessionExpired)
	}

	log := logger.WithSession(o.logger, s.Generation, s.Candidate.ProfileURL, string(s.Config.Goal))
	if s.Generation != generation {
		log.Warn("stale confirmation", zap.Uint64("requested_generation", generation))
		return 0, o.fail(log, metrics.KindSession, ErrSessionSuperseded)
	}

	o.publisher.Publish(bus.StatusUpdate{Status: StatusAnalyzing})

	start := o.now()
	judgment, err := o.judge.Judge(ctx, s.Profile, s.Config)
	o.metrics.ObserveAI(o.now().Sub(start))
	if err != nil {
		return 0, o.fail(log, metrics.KindAI, &AIInvocationError{Err: err})
	}

	report := o.buildReport(s, judgment)

	id, err := o.store.InsertReport(ctx, report)
	if err != nil {
		return 0, o.fail(log, metrics.KindPersistence, &PersistenceError{Op: "saving the report", Err: err})
	}

	// Report insert and candidate removal are separate writes.
	if s.Candidate.ID != 0 {
		if err := o.store.DeleteCandidate(ctx, s.Candidate.ID); err != nil {
			return id, o.fail(log, metrics.KindPersistence, &PersistenceError{
				Op:       fmt.Sprintf("removing pending candidate %d", s.Candidate.ID),
				ReportID: id,
				Err:      err,
			})
		}
	}

	o.metrics.AnalysisCompleted()
	o.publisher.Publish(bus.AnalysisComplete{ReportID: id})
	log.Info("analysis completed",
		zap.Int64("report_id", id),
		zap.Int("score", report.Score),
		zap.String("grade", report.Grade),
	)

	return id, nil
}

func (o *Orchestrator) buildReport(s *Session, j *ai.Judgment) *prospect.Report {
	score, grade := scoring.Normalize(j.Components, s.Config.Goal)

	return &prospect.Report{
		Name:              s.Candidate.Name,
		Headline:          s.Candidate.Headline,
		ProfileURL:        s.Candidate.ProfileURL,
		ConnectionDegree:  s.Candidate.ConnectionDegree,
		CapturedAt:        s.Candidate.CreatedAt,
		Goal:              string(s.Config.Goal),
		Score:             score,
		Grade:             grade,
		Justification:     j.Justification,
		ConnectionMessage: ai.Personalize(j.ConnectionMessage, s.Candidate.Name),
		AnalyzedAt:        o.now(),
	}
}

// clear drops the session if it still belongs to generation.
// clear empties the slot if it still holds generation and reports whether it did.
func (o *Orchestrator) clear(generation uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil && o.session.Generation == generation {
		o.session = nil
		return true
	}
	return false
}

// drop discards the outcome of a superseded scrape without publishing.
func (o *Orchestrator) drop(log *zap.Logger, err error) error {
	o.metrics.AnalysisFailed(metrics.KindSession)
	if err != nil {
		log.Info("dropping scrape failure of a superseded session", zap.Error(err))
	} else {
		log.Info("dropping scrape result of a superseded session")
	}
	return ErrSessionSuperseded
}

func (o *Orchestrator) fail(log *zap.Logger, kind string, err error) error {
	o.metrics.AnalysisFailed(kind)
	log.Warn("analysis failed", zap.String("kind", kind), zap.Error(err))
	o.publisher.Publish(bus.AnalysisError{Message: err.Error()})
	return err
}

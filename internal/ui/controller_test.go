package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
	"github.com/spigell/prospector/internal/settings"
)

type recorder struct {
	events []bus.Event
}

func (r *recorder) Publish(evt bus.Event) {
	r.events = append(r.events, evt)
}

var ada = prospect.Candidate{ID: 7, Name: "Ada Lovelace", Headline: "Engineer", ProfileURL: "https://www.linkedin.com/in/ada"}

func testConfig() settings.Config {
	cfg := settings.Default()
	cfg.APIKey = "key"
	cfg.Goal = scoring.GoalPeerNetworking
	return cfg
}

func TestControllerAnalysisFlow(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := NewController(rec)
	require.Equal(t, StateListing, c.State())

	require.NoError(t, c.Analyze(ada, testConfig()))
	assert.Equal(t, StateAnalyzing, c.State())
	require.Len(t, rec.events, 1)
	assert.Equal(t, bus.AnalyzeProspect{Candidate: ada, Config: testConfig()}, rec.events[0])

	assert.True(t, c.HandleEvent(bus.StatusUpdate{Status: "Scraping..."}))
	assert.Equal(t, "Scraping...", c.Status())

	profile := prospect.Profile{About: "math"}
	assert.True(t, c.HandleEvent(bus.ScrapeReady{Generation: 3, Candidate: ada, Profile: profile}))
	assert.Equal(t, StateReviewingScrape, c.State())
	assert.Equal(t, uint64(3), c.Generation())
	assert.Equal(t, "math", c.Profile().About)

	require.NoError(t, c.Proceed())
	assert.Equal(t, StateAnalyzing, c.State())
	require.Len(t, rec.events, 2)
	assert.Equal(t, bus.ProceedWithAI{Generation: 3}, rec.events[1])

	assert.True(t, c.HandleEvent(bus.AnalysisComplete{ReportID: 11}))
	assert.Equal(t, StateReport, c.State())
	assert.Equal(t, int64(11), c.ReportID())

	require.NoError(t, c.Back())
	assert.Equal(t, StateHistory, c.State())
	require.NoError(t, c.CloseHistory())
	assert.Equal(t, StateListing, c.State())
}

func TestControllerCancelReturnsToListing(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := NewController(rec)
	require.NoError(t, c.Analyze(ada, testConfig()))
	require.True(t, c.HandleEvent(bus.ScrapeReady{Generation: 1, Candidate: ada}))

	require.NoError(t, c.Cancel())
	assert.Equal(t, StateListing, c.State())
	assert.Nil(t, c.Candidate())
	assert.Len(t, rec.events, 1, "cancel sends nothing")

	// A late completion of the abandoned session changes nothing.
	assert.False(t, c.HandleEvent(bus.AnalysisComplete{ReportID: 2}))
	assert.Equal(t, StateListing, c.State())
}

func TestControllerErrorFromAnyState(t *testing.T) {
	t.Parallel()

	setups := map[string]func(c *Controller){
		"listing":   func(c *Controller) {},
		"settings":  func(c *Controller) { _ = c.OpenSettings() },
		"history":   func(c *Controller) { _ = c.OpenHistory() },
		"analyzing": func(c *Controller) { _ = c.Analyze(ada, testConfig()) },
		"reviewing": func(c *Controller) {
			_ = c.Analyze(ada, testConfig())
			c.HandleEvent(bus.ScrapeReady{Generation: 1, Candidate: ada})
		},
		"report": func(c *Controller) {
			_ = c.OpenHistory()
			_ = c.OpenReport(4)
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := NewController(&recorder{})
			setup(c)

			assert.True(t, c.HandleEvent(bus.AnalysisError{Message: "scrape failed"}))
			assert.Equal(t, StateListing, c.State())
			assert.Equal(t, "scrape failed", c.Err())
		})
	}
}

func TestControllerRejectsInvalidActions(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := NewController(rec)

	for name, action := range map[string]func() error{
		"proceed":        c.Proceed,
		"cancel":         c.Cancel,
		"close settings": c.CloseSettings,
		"close history":  c.CloseHistory,
		"back":           c.Back,
		"open report":    func() error { return c.OpenReport(1) },
	} {
		err := action()
		assert.ErrorIs(t, err, ErrInvalidAction, name)
		assert.Equal(t, StateListing, c.State(), name)
	}

	require.NoError(t, c.Analyze(ada, testConfig()))
	assert.ErrorIs(t, c.Analyze(ada, testConfig()), ErrInvalidAction)
	assert.ErrorIs(t, c.OpenSettings(), ErrInvalidAction)
	assert.ErrorIs(t, c.Proceed(), ErrInvalidAction, "no scrape to confirm yet")
	assert.Equal(t, StateAnalyzing, c.State())
	assert.Len(t, rec.events, 1)
}

func TestControllerIgnoresUnexpectedEvents(t *testing.T) {
	t.Parallel()

	c := NewController(&recorder{})

	assert.False(t, c.HandleEvent(bus.ScrapeReady{Generation: 1, Candidate: ada}))
	assert.False(t, c.HandleEvent(bus.StatusUpdate{Status: "x"}))
	assert.False(t, c.HandleEvent(bus.AnalysisComplete{ReportID: 1}))
	assert.False(t, c.HandleEvent(bus.AnalyzeProspect{Candidate: ada}))
	assert.False(t, c.HandleEvent(bus.ProceedWithAI{Generation: 1}))
	assert.Equal(t, StateListing, c.State())

	require.NoError(t, c.Analyze(ada, testConfig()))
	other := prospect.Candidate{ProfileURL: "https://www.linkedin.com/in/other"}
	assert.False(t, c.HandleEvent(bus.ScrapeReady{Generation: 1, Candidate: other}), "scrape of another prospect")
	assert.False(t, c.HandleEvent(bus.AnalysisComplete{ReportID: 1}), "no confirmation sent yet")
	assert.Equal(t, StateAnalyzing, c.State())
}

func TestControllerSettingsAndHistory(t *testing.T) {
	t.Parallel()

	c := NewController(&recorder{})

	require.NoError(t, c.OpenSettings())
	assert.Equal(t, StateSettings, c.State())
	assert.ErrorIs(t, c.OpenHistory(), ErrInvalidAction)
	require.NoError(t, c.CloseSettings())

	require.NoError(t, c.OpenHistory())
	require.NoError(t, c.OpenReport(9))
	assert.Equal(t, StateReport, c.State())
	assert.Equal(t, int64(9), c.ReportID())
	assert.Equal(t, "report", c.State().String())
}

// Package ui holds the view-state machine of the terminal interface and its bubbletea rendering.
package ui

import (
	"errors"
	"fmt"

	"github.com/spigell/prospector/internal/bus"
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/settings"
)

type State int

const (
	StateListing State = iota
	StateSettings
	StateHistory
	StateAnalyzing
	StateReviewingScrape
	StateReport
)

func (s State) String() string {
	switch s {
	case StateListing:
		return "listing"
	case StateSettings:
		return "settings"
	case StateHistory:
		return "history"
	case StateAnalyzing:
		return "analyzing"
	case StateReviewingScrape:
		return "reviewing-scrape"
	case StateReport:
		return "report"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidAction is returned for a user action the current state does not accept.
var ErrInvalidAction = errors.New("action is not available here")

// Controller is the view-state machine. It issues commands on the bus and
// reacts to orchestrator events; it never talks to the orchestrator directly.
type Controller struct {
	publisher bus.Publisher

	state      State
	candidate  *prospect.Candidate
	generation uint64
	profile    *prospect.Profile
	status     string
	reportID   int64
	lastError  string
}

func NewController(publisher bus.Publisher) *Controller {
	return &Controller{publisher: publisher, state: StateListing}
}

func (c *Controller) State() State                   { return c.state }
func (c *Controller) Status() string                 { return c.status }
func (c *Controller) Err() string                    { return c.lastError }
func (c *Controller) Candidate() *prospect.Candidate { return c.candidate }
func (c *Controller) Profile() *prospect.Profile     { return c.profile }
func (c *Controller) Generation() uint64             { return c.generation }
func (c *Controller) ReportID() int64                { return c.reportID }

// ClearErr hides the last surfaced error.
func (c *Controller) ClearErr() { c.lastError = "" }

func (c *Controller) invalid(action string) error {
	return fmt.Errorf("%s in %s: %w", action, c.state, ErrInvalidAction)
}

// Analyze starts the analysis of candidate with a snapshot of cfg.
func (c *Controller) Analyze(candidate prospect.Candidate, cfg settings.Config) error {
	if c.state != StateListing {
		return c.invalid("analyze")
	}

	c.lastError = ""
	c.candidate = &candidate
	c.generation = 0
	c.profile = nil
	c.reportID = 0
	c.status = "Scraping profile..."
	c.state = StateAnalyzing

	c.publisher.Publish(bus.AnalyzeProspect{Candidate: candidate, Config: cfg})
	return nil
}

// Proceed confirms the reviewed scrape.
func (c *Controller) Proceed() error {
	if c.state != StateReviewingScrape {
		return c.invalid("proceed")
	}

	c.state = StateAnalyzing
	c.status = "Waiting for AI..."
	c.publisher.Publish(bus.ProceedWithAI{Generation: c.generation})
	return nil
}

// Cancel abandons the review. No command is sent; the orchestrator keeps the
// session until the next analysis replaces it.
func (c *Controller) Cancel() error {
	if c.state != StateReviewingScrape {
		return c.invalid("cancel")
	}
	c.reset()
	return nil
}

func (c *Controller) OpenSettings() error {
	if c.state != StateListing {
		return c.invalid("open settings")
	}
	c.lastError = ""
	c.state = StateSettings
	return nil
}

func (c *Controller) CloseSettings() error {
	if c.state != StateSettings {
		return c.invalid("close settings")
	}
	c.state = StateListing
	return nil
}

func (c *Controller) OpenHistory() error {
	if c.state != StateListing {
		return c.invalid("open history")
	}
	c.lastError = ""
	c.state = StateHistory
	return nil
}

func (c *Controller) CloseHistory() error {
	if c.state != StateHistory {
		return c.invalid("close history")
	}
	c.state = StateListing
	return nil
}

// OpenReport shows a stored report picked from the history.
func (c *Controller) OpenReport(id int64) error {
	if c.state != StateHistory {
		return c.invalid("open report")
	}
	c.reportID = id
	c.state = StateReport
	return nil
}

// Back leaves a report for the history.
func (c *Controller) Back() error {
	if c.state != StateReport {
		return c.invalid("back")
	}
	c.state = StateHistory
	return nil
}

// HandleEvent applies an orchestrator event and reports whether it changed anything.
// Commands, unknown events and events that do not fit the current state are ignored.
func (c *Controller) HandleEvent(evt bus.Event) bool {
	switch e := evt.(type) {
	case bus.ScrapeReady:
		if c.state != StateAnalyzing || c.generation != 0 || !c.awaiting(e.Candidate.ProfileURL) {
			return false
		}
		profile := e.Profile
		c.profile = &profile
		c.generation = e.Generation
		c.status = ""
		c.state = StateReviewingScrape
		return true

	case bus.StatusUpdate:
		if c.state != StateAnalyzing {
			return false
		}
		c.status = e.Status
		return true

	case bus.AnalysisComplete:
		if c.state != StateAnalyzing || c.generation == 0 {
			return false
		}
		c.reportID = e.ReportID
		c.status = ""
		c.state = StateReport
		return true

	case bus.AnalysisError:
		c.reset()
		c.lastError = e.Message
		return true

	default:
		return false
	}
}

func (c *Controller) awaiting(url string) bool {
	return c.candidate != nil && c.candidate.ProfileURL == url
}

func (c *Controller) reset() {
	c.state = StateListing
	c.candidate = nil
	c.generation = 0
	c.profile = nil
	c.status = ""
}

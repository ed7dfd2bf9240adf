// Package bus carries one-way, fire-and-forget events between the UI and the background orchestrator.
package bus

import (
	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/settings"
)

// Type is the wire name of an event.
type Type string

// Supported event types.
const (
	TypeAnalyzeProspect  Type = "analyze-single-prospect"
	TypeProceedWithAI    Type = "proceed-with-ai-analysis"
	TypeScrapeReady      Type = "scraping-complete-for-review"
	TypeStatusUpdate     Type = "analysis-status-update"
	TypeAnalysisComplete Type = "analysis-complete"
	TypeAnalysisError    Type = "analysis-error"
)

// Event is the closed set of messages carried by the bus. Only the types in
// this file implement it.
type Event interface {
	Type() Type
	sealed()
}

// AnalyzeProspect asks the orchestrator to start a new analysis session.
type AnalyzeProspect struct {
	Candidate prospect.Candidate
	Config    settings.Config
}

// ProceedWithAI confirms the reviewed scrape of the session with the given generation.
type ProceedWithAI struct {
	Generation uint64
}

// ScrapeReady carries the raw profile data for review.
type ScrapeReady struct {
	Generation uint64
	Candidate  prospect.Candidate
	Profile    prospect.Profile
}

// StatusUpdate reports progress of the running analysis.
type StatusUpdate struct {
	Status string
}

// AnalysisComplete announces the stored report.
type AnalysisComplete struct {
	ReportID int64
}

// AnalysisError reports any orchestrator failure as a human readable message.
type AnalysisError struct {
	Message string
}

func (AnalyzeProspect) Type() Type  { return TypeAnalyzeProspect }
func (ProceedWithAI) Type() Type    { return TypeProceedWithAI }
func (ScrapeReady) Type() Type      { return TypeScrapeReady }
func (StatusUpdate) Type() Type     { return TypeStatusUpdate }
func (AnalysisComplete) Type() Type { return TypeAnalysisComplete }
func (AnalysisError) Type() Type    { return TypeAnalysisError }

func (AnalyzeProspect) sealed()  {}
func (ProceedWithAI) sealed()    {}
func (ScrapeReady) sealed()      {}
func (StatusUpdate) sealed()     {}
func (AnalysisComplete) sealed() {}
func (AnalysisError) sealed()    {}

// IsCommand reports whether the event travels from the UI to the orchestrator.
func IsCommand(evt Event) bool {
	switch evt.(type) {
	case AnalyzeProspect, ProceedWithAI:
		return true
	default:
		return false
	}
}

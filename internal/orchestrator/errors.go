package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned when a confirmation arrives without a fully populated session.
	ErrSessionExpired = errors.New("analysis session expired or was invalid")
	// ErrSessionSuperseded is returned for work that belongs to an older session
	// after a newer analysis has started.
	ErrSessionSuperseded = errors.New("analysis session was superseded by a newer analysis")
)

// ScrapeError is returned when the profile page could not be loaded or yielded no data.
type ScrapeError struct {
	URL string
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scraping %s failed: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// AIInvocationError covers a missing credential, a failed AI call and a malformed AI response.
type AIInvocationError struct {
	Err error
}

func (e *AIInvocationError) Error() string {
	return fmt.Sprintf("AI analysis failed: %v", e.Err)
}

func (e *AIInvocationError) Unwrap() error { return e.Err }

// PersistenceError is returned when a store write fails. ReportID is set when
// the report was already saved, i.e. the candidate is still pending next to its report.
type PersistenceError struct {
	Op       string
	ReportID int64
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.ReportID != 0 {
		return fmt.Sprintf("report %d was saved but %s failed: %v", e.ReportID, e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

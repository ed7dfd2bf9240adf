package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/prospect"
)

// PendingName is the name of the deduplication step. Its dropped count is the
// number of duplicates reported to the user.
const PendingName = "pending"

// PendingLister returns the candidates already waiting for analysis.
type PendingLister interface {
	ListCandidates(ctx context.Context) (*prospect.Candidates, error)
}

type PendingDeps struct {
	Store  PendingLister
	Logger *zap.Logger
}

type pendingFilter struct {
	deps *PendingDeps
}

// NewPending creates a filter that removes candidates already pending, repeated
// within the batch, or without a profile url.
func NewPending(deps *PendingDeps) Filter {
	return &pendingFilter{deps: deps}
}

func (f *pendingFilter) Name() string { return PendingName }

func (f *pendingFilter) Disable(string) {}

func (f *pendingFilter) IsEnabled() bool { return true }

func (f *pendingFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("candidate store is required")
	}
	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

func (f *pendingFilter) Apply(ctx context.Context, c *prospect.Candidates) (*prospect.Candidates, Step, error) {
	initial := c.Len()

	pending, err := f.deps.Store.ListCandidates(ctx)
	if err != nil {
		return c, Step{}, fmt.Errorf("list pending candidates: %w", err)
	}

	toInsert, duplicates := prospect.Ingest(c.Items, pending.URLs())
	c.Items = toInsert

	if duplicates > 0 {
		f.deps.Logger.Debug("ignoring duplicate candidates",
			zap.Int("duplicates", duplicates),
			zap.Int("already_pending", pending.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: duplicates, Left: c.Len()}, nil
}

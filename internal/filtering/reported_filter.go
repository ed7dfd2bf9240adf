package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/prospect"
)

const includeFlagSetMsg = "include-reported flag is set"

// ReportedLister returns the profile urls that already have an analysis report.
type ReportedLister interface {
	ReportedURLs(ctx context.Context) (map[string]struct{}, error)
}

type ReportedDeps struct {
	Store  ReportedLister
	Logger *zap.Logger
}

type ReportedConfig struct {
	Ignore bool
}

type reportedFilter struct {
	deps   *ReportedDeps
	ignore bool
}

// NewReported creates a filter that removes candidates that were already analyzed.
func NewReported(cfg *ReportedConfig, deps *ReportedDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &reportedFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *reportedFilter) Name() string { return "reported" }

func (f *reportedFilter) Disable(string) {}

func (f *reportedFilter) IsEnabled() bool { return true }

func (f *reportedFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("report store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *reportedFilter) Apply(ctx context.Context, c *prospect.Candidates) (*prospect.Candidates, Step, error) {
	initial := c.Len()
	if f.ignore {
		f.deps.Logger.Info("keeping already analyzed prospects", zap.String("reason", includeFlagSetMsg))
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	reported, err := f.deps.Store.ReportedURLs(ctx)
	if err != nil {
		return c, Step{}, fmt.Errorf("get reported prospects: %w", err)
	}

	urls := make([]string, 0, len(reported))
	for url := range reported {
		urls = append(urls, url)
	}

	excluded := c.Exclude(prospect.CandidateURLField, urls)
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding already analyzed prospects",
			zap.Strings("excluded_prospects", excluded),
			zap.Int("prospects_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *reportedFilter) Status() Status {
	details := map[string]string{
		"exclude_reported": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}

package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/prospector/internal/prospect"
)

type degreeFilter struct {
	degrees []string
	logger  *zap.Logger
}

// NewExcludedDegrees creates a filter that removes candidates by connection degree, e.g. "1st".
func NewExcludedDegrees(degrees []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &degreeFilter{
		degrees: degrees,
		logger:  logger,
	}
}

func (f *degreeFilter) Name() string { return "connection_degree" }

func (f *degreeFilter) Disable(string) {}

func (f *degreeFilter) IsEnabled() bool { return true }

func (f *degreeFilter) Validate() error { return nil }

func (f *degreeFilter) Apply(_ context.Context, c *prospect.Candidates) (*prospect.Candidates, Step, error) {
	initial := c.Len()
	if len(f.degrees) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(prospect.CandidateDegreeField, f.degrees)
	if len(excluded) > 0 {
		f.logger.Info("excluding prospects by connection degree",
			zap.Strings("excluded_degrees", f.degrees),
			zap.Strings("excluded_prospects", excluded),
			zap.Int("prospects_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *degreeFilter) Status() Status {
	details := map[string]string{}
	if len(f.degrees) > 0 {
		details["degrees"] = strings.Join(f.degrees, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

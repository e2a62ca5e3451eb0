package reporting

import (
	"context"
	"fmt"
	"time"

	"robo-advisor-lab/internal/storage"
)

// Generator produces reports from stored simulation runs.
type Generator struct {
	reportStore storage.ReportStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(reportStore storage.ReportStore) *Generator {
	return &Generator{
		reportStore: reportStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate renders the stored run runID. Returns storage.ErrNotFound if unknown.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	rec, err := g.reportStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", runID, err)
	}
	return NewReport(rec, g.now()), nil
}

// Latest renders the most recent stored run for userID.
// Returns storage.ErrNotFound if the user has no stored runs.
func (g *Generator) Latest(ctx context.Context, userID string) (*Report, error) {
	recs, err := g.reportStore.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reports for %s: %w", userID, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("load reports for %s: %w", userID, storage.ErrNotFound)
	}
	return NewReport(recs[0], g.now()), nil
}

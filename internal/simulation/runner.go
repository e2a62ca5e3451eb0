package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/idhash"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/storage"
)

// Runner selects historical or stochastic mode for a request and persists
// the resulting report under a deterministic run ID.
type Runner struct {
	historical      *HistoricalCalculator
	projector       *Projector
	holdingStore    storage.HoldingStore
	instrumentStore storage.InstrumentStore
	priceStore      storage.PriceStore
	reportStore     storage.ReportStore
	inflation       inflation.Source
	logger          *log.Logger
	clock           func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	HoldingStore    storage.HoldingStore
	InstrumentStore storage.InstrumentStore
	PriceStore      storage.PriceStore
	ReportStore     storage.ReportStore // nil disables report caching
	Inflation       inflation.Source    // defaults to the mock generator
	Projector       *Projector          // defaults to NewProjector()
	Logger          *log.Logger         // nil disables logging
	Clock           func() time.Time    // defaults to time.Now
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Inflation == nil {
		opts.Inflation = inflation.NewGenerator()
	}
	if opts.Projector == nil {
		opts.Projector = NewProjector()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Runner{
		historical: NewHistoricalCalculator(HistoricalOptions{
			HoldingStore: opts.HoldingStore,
			PriceStore:   opts.PriceStore,
			Inflation:    opts.Inflation,
		}),
		projector:       opts.Projector,
		holdingStore:    opts.HoldingStore,
		instrumentStore: opts.InstrumentStore,
		priceStore:      opts.PriceStore,
		reportStore:     opts.ReportStore,
		inflation:       opts.Inflation,
		logger:          opts.Logger,
		clock:           opts.Clock,
	}
}

// Run produces a performance report for req.
// Steps:
//  1. Normalise the request
//  2. With a user, serve a stored historical report or replay history
//  3. On ErrNotAvailable (or without a user), serve a stored projection or project
//  4. Persist the new report
//
// Stored reports are keyed by the request and a fingerprint of the rows it
// reads, so changed holdings or prices are always recomputed.
func (r *Runner) Run(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error) {
	return r.run(ctx, req, true)
}

// Refresh is Run without reading stored reports. The result is still stored.
func (r *Runner) Refresh(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error) {
	return r.run(ctx, req, false)
}

func (r *Runner) run(ctx context.Context, req domain.SimulationRequest, cached bool) (*domain.PerformanceReport, error) {
	// 1. Normalise
	req = req.Normalized()

	// 2. Historical
	if req.UserID != "" {
		report, err := r.runHistorical(ctx, req, cached)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, ErrNotAvailable) {
			return nil, err
		}
		observability.RecordStochasticFallback()
		r.logf("user %s: no usable price history, projecting", req.UserID)
	}

	// 3. Stochastic
	return r.runStochastic(ctx, req, cached)
}

// Compare runs req and, when scenario is non-nil, the scenario applied to req.
// A historical baseline keeps the scenario historical; if the scenario cannot be
// replayed it is reported as nil. A stochastic baseline projects the scenario.
func (r *Runner) Compare(ctx context.Context, req domain.SimulationRequest, scenario *domain.ContributionScenario) (*domain.Comparison, error) {
	baseline, err := r.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	cmp := &domain.Comparison{Baseline: baseline}
	if scenario == nil {
		return cmp, nil
	}

	alt := scenario.Apply(req.Normalized())
	if baseline.Source == domain.SourceHistorical {
		report, err := r.runHistorical(ctx, alt, true)
		if errors.Is(err, ErrNotAvailable) {
			return cmp, nil
		}
		if err != nil {
			return nil, err
		}
		cmp.Scenario = report
		return cmp, nil
	}

	report, err := r.runStochastic(ctx, alt, true)
	if err != nil {
		return nil, err
	}
	cmp.Scenario = report
	return cmp, nil
}

// Project always runs the stochastic engine, bypassing the report cache.
func (r *Runner) Project(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error) {
	req = req.Normalized()
	in, err := r.projectionInputs(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.projector.Project(req, in), nil
}

func (r *Runner) runHistorical(ctx context.Context, req domain.SimulationRequest, cached bool) (*domain.PerformanceReport, error) {
	key, err := r.historicalKey(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.runSource(ctx, req, domain.SourceHistorical, key, cached, func() (*domain.PerformanceReport, error) {
		return r.historical.Calculate(ctx, req)
	})
}

func (r *Runner) runStochastic(ctx context.Context, req domain.SimulationRequest, cached bool) (*domain.PerformanceReport, error) {
	in, err := r.projectionInputs(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.runSource(ctx, req, domain.SourceStochastic, projectionKey(in), cached, func() (*domain.PerformanceReport, error) {
		return r.projector.Project(req, in), nil
	})
}

// runSource serves a stored report for (req, source, inputs) when cached is
// set, otherwise computes and stores one.
func (r *Runner) runSource(ctx context.Context, req domain.SimulationRequest, source domain.ReportSource, inputs string, cached bool, compute func() (*domain.PerformanceReport, error)) (*domain.PerformanceReport, error) {
	runID := idhash.ComputeRunID(req, source, inputs)

	if cached && r.reportStore != nil {
		rec, err := r.reportStore.GetByID(ctx, runID)
		if err == nil {
			observability.RecordReportCacheHit(string(source))
			return rec.Report, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load report %s: %w", runID, err)
		}
	}

	start := time.Now()
	report, err := compute()
	elapsed := time.Since(start).Seconds()
	switch {
	case errors.Is(err, ErrNotAvailable):
		observability.RecordSimulation(string(source), "not_available", elapsed)
		return nil, err
	case err != nil:
		observability.RecordSimulation(string(source), "error", elapsed)
		return nil, err
	}
	observability.RecordSimulation(string(source), "ok", elapsed)
	report.RunID = runID

	if r.reportStore != nil {
		rec := &domain.ReportRecord{
			RunID:     runID,
			UserID:    req.UserID,
			Source:    source,
			CreatedAt: r.clock().UTC(),
			Report:    report,
		}
		// a duplicate means the same inputs were already stored
		if err := r.reportStore.Insert(ctx, rec); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			r.logf("store report %s: %v", runID, err)
		}
	}

	return report, nil
}

// projectionInputs gathers the seeds, the holdings-derived yield and the
// inflation rows for a projection of req.
func (r *Runner) projectionInputs(ctx context.Context, req domain.SimulationRequest) (ProjectionInputs, error) {
	months := req.Timeframe.Months
	if months < 1 {
		months = 1
	}
	start := req.Timeframe.Start

	in := ProjectionInputs{
		DividendYieldPct: DefaultDividendYieldPct,
		Seed:             idhash.ComputeSimulationSeed(req.UserID, req.InvestmentMode, months, start),
		BenchmarkSeed:    idhash.ComputeBenchmarkSeed(req.BenchmarkSymbol, months, start),
	}

	if req.UserID != "" && r.holdingStore != nil && r.priceStore != nil {
		holdings, err := r.holdingStore.GetByUser(ctx, req.UserID)
		if err != nil {
			return in, fmt.Errorf("load holdings: %w", err)
		}
		yield, err := WeightedDividendYield(ctx, holdings, r.instrumentStore, r.priceStore)
		if err != nil {
			return in, err
		}
		in.DividendYieldPct = yield
	}

	if req.InflationAdjust {
		end := start.AddDate(0, months-1, 0)
		points, err := r.inflation.InflationSeries(ctx, start, end)
		if err != nil {
			return in, fmt.Errorf("load inflation series: %w", err)
		}
		in.Inflation = points
	}

	return in, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

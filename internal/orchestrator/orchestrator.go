// Package orchestrator runs batch refreshes: every user with holdings is
// simulated over a shared timeframe with a bounded pool of workers.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/storage"
)

// DefaultWorkers is the pool size used when Options.Workers is not positive.
const DefaultWorkers = 4

// Simulator recomputes one simulation request, ignoring stored reports.
type Simulator interface {
	Refresh(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error)
}

// Orchestrator coordinates batch refresh execution.
// Flow: list users → resolve timeframe → simulate each user → record metrics
type Orchestrator struct {
	holdingStore storage.HoldingStore
	simulator    Simulator

	template     domain.SimulationRequest
	timeframeKey string
	workers      int

	logger *log.Logger
	clock  func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	HoldingStore storage.HoldingStore
	Simulator    Simulator

	// Template is copied for every user; UserID and Timeframe are replaced.
	Template     domain.SimulationRequest
	TimeframeKey string // defaults to 1y

	Workers int
	Logger  *log.Logger // nil disables logging
	Clock   func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.TimeframeKey == "" {
		opts.TimeframeKey = domain.Timeframe1Y
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Orchestrator{
		holdingStore: opts.HoldingStore,
		simulator:    opts.Simulator,
		template:     opts.Template,
		timeframeKey: opts.TimeframeKey,
		workers:      opts.Workers,
		logger:       opts.Logger,
		clock:        opts.Clock,
	}
}

// UserResult is the outcome of one user's refresh.
type UserResult struct {
	UserID string
	RunID  string
	Source domain.ReportSource
	Err    error
}

// RunResult contains results from a refresh.
type RunResult struct {
	Timeframe  domain.Timeframe
	Users      []UserResult // ordered by user ID
	Historical int
	Stochastic int
	Failed     int
	Duration   time.Duration
}

// Errors returns the failures formatted as "user: error".
func (r *RunResult) Errors() []string {
	var out []string
	for _, u := range r.Users {
		if u.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", u.UserID, u.Err))
		}
	}
	return out
}

// Run refreshes every user with holdings.
// A failing user is recorded in the result and does not stop the others;
// only failing to list users (or a cancelled context) fails the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	users, err := o.holdingStore.ListUsers(ctx)
	if err != nil {
		observability.RecordRefreshRun("error", 0, 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := &RunResult{
		Timeframe: domain.ResolveTimeframe(o.timeframeKey, 0, nil, nil, o.clock()),
	}
	o.logf("refreshing %d users over %s (%d workers)", len(users), result.Timeframe.Label(), o.workers)

	result.Users = o.runAll(ctx, users, result.Timeframe)
	for _, u := range result.Users {
		switch {
		case u.Err != nil:
			result.Failed++
			o.logf("user %s failed: %v", u.UserID, u.Err)
		case u.Source == domain.SourceHistorical:
			result.Historical++
		default:
			result.Stochastic++
		}
	}
	result.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		observability.RecordRefreshRun("cancelled", len(users), result.Failed, result.Duration.Seconds())
		return result, err
	}

	status := "ok"
	if result.Failed > 0 {
		status = "partial"
	}
	observability.RecordRefreshRun(status, len(users), result.Failed, result.Duration.Seconds())
	if result.Failed < len(users) || len(users) == 0 {
		observability.DefaultMetrics.LastSuccessfulRefresh.SetToCurrentTime()
	}

	o.logf("refresh done: %d historical, %d stochastic, %d failed in %s",
		result.Historical, result.Stochastic, result.Failed, result.Duration.Round(time.Millisecond))

	return result, nil
}

// runAll fans users out to the worker pool and collects results in user order.
func (o *Orchestrator) runAll(ctx context.Context, users []string, tf domain.Timeframe) []UserResult {
	results := make([]UserResult, len(users))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.runUser(ctx, users[i], tf)
			}
		}()
	}

	for i := range users {
		if ctx.Err() != nil {
			results[i] = UserResult{UserID: users[i], Err: ctx.Err()}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].UserID < results[j].UserID
	})
	return results
}

func (o *Orchestrator) runUser(ctx context.Context, userID string, tf domain.Timeframe) UserResult {
	req := o.template
	req.UserID = userID
	req.Timeframe = tf

	report, err := o.simulator.Refresh(ctx, req)
	if err != nil {
		return UserResult{UserID: userID, Err: err}
	}
	return UserResult{UserID: userID, RunID: report.RunID, Source: report.Source}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}

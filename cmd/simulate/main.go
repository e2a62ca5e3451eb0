package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robo-advisor-lab/internal/api"
	"robo-advisor-lab/internal/config"
	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/ingestion"
	"robo-advisor-lab/internal/orchestrator"
	"robo-advisor-lab/internal/reporting"
	"robo-advisor-lab/internal/simulation"
)

func main() {
	config.LoadEnvFile(".env")

	// Request
	userID := flag.String("user", "", "User ID (empty for an anonymous projection)")
	timeframe := flag.String("timeframe", domain.Timeframe1Y, "Timeframe: 1y, 3y, 5y, custom")
	customMonths := flag.Int("custom-months", 0, "Months for -timeframe custom")
	start := flag.String("start", "", "Custom start date (YYYY-MM-DD)")
	end := flag.String("end", "", "Custom end date (YYYY-MM-DD)")
	mode := flag.String("mode", "lump_sum", "Investment mode: lump_sum, monthly")
	initial := flag.Float64("initial", 10000, "Initial lump sum")
	monthly := flag.Float64("monthly", 0, "Recurring contribution (monthly mode)")
	cadence := flag.String("cadence", "monthly", "Contribution cadence: monthly, quarterly, annual")
	anchorMonth := flag.Int("anchor-month", 0, "Anchor month (1-12) for annual cadence")
	policy := flag.String("policy", "reinvest", "Distribution policy: reinvest, cash_out")
	benchmark := flag.String("benchmark", "", "Benchmark symbol, e.g. STX40.JO")
	inflationAdjust := flag.Bool("inflation", false, "Report inflation-adjusted values")

	// Scenario
	scenarioInitial := flag.Float64("scenario-initial", -1, "Compare against this initial investment (negative disables)")
	scenarioMonthly := flag.Float64("scenario-monthly", -1, "Compare against this recurring contribution (negative disables)")

	// Batch
	allUsers := flag.Bool("all-users", false, "Refresh every user with holdings")
	workers := flag.Int("workers", orchestrator.DefaultWorkers, "Worker count for -all-users")

	// Storage
	postgresDSN := flag.String("postgres-dsn", config.Env("POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", config.Env("CLICKHOUSE_DSN", ""), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	instrumentsCSV := flag.String("instruments-csv", "", "Load instruments CSV into memory stores")
	holdingsCSV := flag.String("holdings-csv", "", "Load holdings CSV into memory stores")
	pricesCSV := flag.String("prices-csv", "", "Load prices CSV into memory stores")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	markdownPath := flag.String("markdown", "", "Write a markdown report to this file")
	chartPath := flag.String("chart", "", "Write a PNG chart to this file")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores
	stores, cleanup, err := config.OpenStores(ctx, config.StoreConfig{
		UseMemory:     *useMemory,
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
	})
	if err != nil {
		logger.Fatalf("create stores: %v", err)
	}
	defer cleanup()

	if *useMemory {
		if err := loadFixtures(ctx, stores, *instrumentsCSV, *holdingsCSV, *pricesCSV); err != nil {
			logger.Fatalf("load fixtures: %v", err)
		}
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		HoldingStore:    stores.Holdings,
		InstrumentStore: stores.Instruments,
		PriceStore:      stores.Prices,
		ReportStore:     stores.Reports,
		Inflation:       inflation.NewStoreSource(stores.Inflation, inflation.NewGenerator()),
		Logger:          logger,
	})

	body := api.SimulateRequest{
		UserID:              *userID,
		Timeframe:           *timeframe,
		CustomMonths:        *customMonths,
		CustomStart:         *start,
		CustomEnd:           *end,
		InvestmentMode:      *mode,
		InitialInvestment:   *initial,
		MonthlyContribution: *monthly,
		Cadence:             *cadence,
		AnchorMonth:         *anchorMonth,
		DistributionPolicy:  *policy,
		Benchmark:           *benchmark,
		InflationAdjust:     *inflationAdjust,
	}
	req, err := body.ToDomain(time.Now())
	if err != nil {
		logger.Fatalf("invalid request: %v", err)
	}

	if *allUsers {
		runAllUsers(ctx, logger, stores, runner, req, *timeframe, *workers, *outputJSON)
		return
	}

	scenario := buildScenario(*scenarioInitial, *scenarioMonthly)
	if scenario != nil {
		cmp, err := runner.Compare(ctx, req, scenario)
		if err != nil {
			logger.Fatalf("simulation failed: %v", err)
		}
		cmp = reporting.RoundComparison(cmp)
		if *outputJSON {
			printJSON(cmp)
		} else {
			printReport("Baseline", cmp.Baseline)
			if cmp.Scenario != nil {
				printReport("Scenario", cmp.Scenario)
			} else {
				fmt.Println("\nScenario: not available")
			}
		}
		writeArtifacts(logger, cmp.Baseline, *markdownPath, *chartPath)
		return
	}

	logger.Printf("Running simulation: user=%q timeframe=%s mode=%s", req.UserID, req.Timeframe.Label(), req.InvestmentMode)
	report, err := runner.Run(ctx, req)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	if *outputJSON {
		printJSON(reporting.RoundReport(report))
	} else {
		printReport("Simulation", reporting.RoundReport(report))
	}
	writeArtifacts(logger, report, *markdownPath, *chartPath)
}

// buildScenario returns nil when neither scenario flag is set.
func buildScenario(initial, monthly float64) *domain.ContributionScenario {
	if initial < 0 && monthly < 0 {
		return nil
	}
	s := &domain.ContributionScenario{}
	if initial >= 0 {
		s.InitialInvestment = &initial
	}
	if monthly >= 0 {
		s.MonthlyContribution = &monthly
		m := domain.ModeMonthly
		s.InvestmentMode = &m
	}
	return s
}

func loadFixtures(ctx context.Context, stores *config.Stores, instrumentsPath, holdingsPath, pricesPath string) error {
	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		InstrumentStore: stores.Instruments,
		HoldingStore:    stores.Holdings,
		PriceStore:      stores.Prices,
	})

	imports := []struct {
		path string
		fn   func(context.Context, *os.File) (ingestion.Result, error)
	}{
		{instrumentsPath, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportInstruments(ctx, f) }},
		{holdingsPath, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportHoldings(ctx, f) }},
		{pricesPath, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportPrices(ctx, f) }},
	}
	for _, imp := range imports {
		if imp.path == "" {
			continue
		}
		f, err := os.Open(imp.path)
		if err != nil {
			return err
		}
		_, err = imp.fn(ctx, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", imp.path, err)
		}
	}
	return nil
}

func runAllUsers(ctx context.Context, logger *log.Logger, stores *config.Stores, runner *simulation.Runner, template domain.SimulationRequest, timeframe string, workers int, outputJSON bool) {
	orch := orchestrator.New(orchestrator.Options{
		HoldingStore: stores.Holdings,
		Simulator:    runner,
		Template:     template,
		TimeframeKey: timeframe,
		Workers:      workers,
		Logger:       logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("refresh failed: %v", err)
	}

	if outputJSON {
		printJSON(result.Users)
		return
	}

	fmt.Println()
	fmt.Println("=== Batch Refresh ===")
	fmt.Printf("Timeframe:          %s (%d months)\n", result.Timeframe.Label(), result.Timeframe.Months)
	fmt.Printf("Users:              %d\n", len(result.Users))
	fmt.Printf("Historical:         %d\n", result.Historical)
	fmt.Printf("Stochastic:         %d\n", result.Stochastic)
	fmt.Printf("Failed:             %d\n", result.Failed)
	fmt.Printf("Duration:           %v\n", result.Duration.Round(time.Millisecond))
	for _, e := range result.Errors() {
		fmt.Printf("  error: %s\n", e)
	}
}

func writeArtifacts(logger *log.Logger, report *domain.PerformanceReport, markdownPath, chartPath string) {
	if markdownPath == "" && chartPath == "" {
		return
	}
	view := reporting.NewReport(&domain.ReportRecord{RunID: report.RunID, UserID: report.UserID, Report: report}, time.Now().UTC())

	if markdownPath != "" {
		if err := os.WriteFile(markdownPath, []byte(reporting.RenderMarkdown(view)), 0o644); err != nil {
			logger.Fatalf("write markdown: %v", err)
		}
		logger.Printf("Wrote %s", markdownPath)
	}
	if chartPath != "" {
		png, err := reporting.RenderChartPNG(view)
		if err != nil {
			logger.Fatalf("render chart: %v", err)
		}
		if err := os.WriteFile(chartPath, png, 0o644); err != nil {
			logger.Fatalf("write chart: %v", err)
		}
		logger.Printf("Wrote %s", chartPath)
	}
}

func printJSON(v any) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}

// printReport outputs a human-readable performance report.
func printReport(title string, r *domain.PerformanceReport) {
	fmt.Println()
	fmt.Printf("=== %s ===\n", title)
	fmt.Printf("Run ID:             %s\n", r.RunID)
	fmt.Printf("Source:             %s\n", r.Source)
	fmt.Printf("Timeframe:          %s (%s to %s)\n", r.Timeframe, r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout))
	fmt.Printf("Mode:               %s, %s, %s\n", r.InvestmentMode, r.ContributionFrequency, r.DistributionPolicy)
	fmt.Println()

	fmt.Println("Performance:")
	fmt.Printf("  Total Invested:   %.2f\n", r.TotalInvested)
	fmt.Printf("  Ending Value:     %.2f\n", r.EndingValue)
	fmt.Printf("  Total Return:     %.2f (%s)\n", r.TotalReturn, pct(r.TotalReturnPct))
	fmt.Printf("  CAGR:             %s\n", pct(r.CAGR))
	fmt.Printf("  Volatility:       %.2f%%\n", r.Volatility)
	fmt.Printf("  Max Drawdown:     %.2f%%\n", r.MaxDrawdown)
	fmt.Println()

	fmt.Println("Dividends:")
	fmt.Printf("  Generated:        %.2f\n", r.TotalDividends)
	fmt.Printf("  Paid Out:         %.2f\n", r.DividendsDistributed)
	fmt.Printf("  Average Yield:    %s\n", pct(r.AverageDividendYield))

	if r.InflationAdjusted {
		fmt.Println()
		fmt.Println("Inflation Adjusted:")
		fmt.Printf("  Real Return:      %s\n", pct(r.TotalReturnReal))
		fmt.Printf("  Real CAGR:        %s\n", pct(r.CAGRReal))
	}

	if b := r.Benchmark; b != nil {
		fmt.Println()
		fmt.Printf("Benchmark (%s):\n", b.Label)
		fmt.Printf("  Total Return:     %s\n", pct(b.TotalReturnPct))
		fmt.Printf("  CAGR:             %s\n", pct(b.CAGR))
		fmt.Printf("  Downside Capture: %s\n", pct(r.DownsideCapture))
	}
}

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

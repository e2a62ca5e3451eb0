package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"robo-advisor-lab/internal/api"
	"robo-advisor-lab/internal/config"
	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/goal"
	"robo-advisor-lab/internal/inflation"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/orchestrator"
	"robo-advisor-lab/internal/reporting"
	"robo-advisor-lab/internal/simulation"
	"robo-advisor-lab/internal/storage/migrations"
)

// Server holds all components of the advisor service.
type Server struct {
	// Configuration
	addr            string
	refreshInterval time.Duration

	// Components
	stores       *config.Stores
	runner       *simulation.Runner
	orchestrator *orchestrator.Orchestrator
	logger       *log.Logger

	// State
	mu             sync.Mutex
	startedAt      time.Time
	lastRefreshRun time.Time
	refreshRunning bool
	refreshRuns    int
	lastUsers      int
	lastFailed     int
}

func main() {
	// Load .env file if exists
	config.LoadEnvFile(".env")

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", config.Env("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", config.Env("POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", config.Env("CLICKHOUSE_DSN", ""), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", config.EnvBool("USE_MEMORY", false), "Use in-memory storage instead of databases")
	migrate := flag.Bool("migrate", config.EnvBool("RUN_MIGRATIONS", false), "Apply database migrations on startup")
	refreshInterval := flag.Duration("refresh-interval", config.EnvDuration("REFRESH_INTERVAL", 6*time.Hour), "Batch refresh interval (0 disables)")
	refreshTimeframe := flag.String("refresh-timeframe", config.Env("REFRESH_TIMEFRAME", domain.Timeframe1Y), "Timeframe simulated by batch refresh")
	refreshBenchmark := flag.String("refresh-benchmark", config.Env("REFRESH_BENCHMARK", "STX40.JO"), "Benchmark used by batch refresh")
	workers := flag.Int("workers", config.EnvInt("REFRESH_WORKERS", orchestrator.DefaultWorkers), "Batch refresh worker count")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := config.OpenStores(ctx, config.StoreConfig{
		UseMemory:     *useMemory,
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
	})
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if *migrate && stores.Pool != nil {
		if err := migrations.RunPostgresMigrations(ctx, stores.Pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		conn.Close()
		logger.Println("Migrations applied")
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		HoldingStore:    stores.Holdings,
		InstrumentStore: stores.Instruments,
		PriceStore:      stores.Prices,
		ReportStore:     stores.Reports,
		Inflation:       inflation.NewStoreSource(stores.Inflation, inflation.NewGenerator()),
		Logger:          log.New(os.Stdout, "[simulation] ", log.LstdFlags),
	})

	server := &Server{
		addr:            *addr,
		refreshInterval: *refreshInterval,
		stores:          stores,
		runner:          runner,
		orchestrator: orchestrator.New(orchestrator.Options{
			HoldingStore: stores.Holdings,
			Simulator:    runner,
			Template: domain.SimulationRequest{
				InvestmentMode:     domain.ModeLumpSum,
				DistributionPolicy: domain.PolicyReinvest,
				BenchmarkSymbol:    *refreshBenchmark,
				InflationAdjust:    true,
			},
			TimeframeKey: *refreshTimeframe,
			Workers:      *workers,
			Logger:       log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
		}),
		logger:    logger,
		startedAt: time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// Run starts the HTTP server, the refresh scheduler and the uptime counter,
// and blocks until ctx is cancelled or the HTTP server fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting advisor server...")

	handler := api.NewServer(api.Options{
		Simulator: s.runner,
		Planner: goal.NewPlanner(goal.PlannerOptions{
			HoldingStore:    s.stores.Holdings,
			InstrumentStore: s.stores.Instruments,
			PriceStore:      s.stores.Prices,
			Projector:       s.runner,
		}),
		Reports: reporting.NewGenerator(s.stores.Reports),
		Status:  s.status,
		Logger:  s.logger,
	})

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting HTTP server on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.refreshInterval > 0 {
		go s.runRefreshScheduler(ctx)
	}
	go s.countUptime(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Printf("HTTP shutdown error: %v", err)
	}
	return runErr
}

// runRefreshScheduler refreshes all users immediately and then on every tick.
func (s *Server) runRefreshScheduler(ctx context.Context) {
	s.logger.Printf("Starting refresh scheduler (interval: %v)...", s.refreshInterval)

	s.runRefresh(ctx)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

// runRefresh executes one batch refresh, skipping if one is in flight.
func (s *Server) runRefresh(ctx context.Context) {
	s.mu.Lock()
	if s.refreshRunning {
		s.mu.Unlock()
		s.logger.Println("Refresh already running, skipping...")
		return
	}
	s.refreshRunning = true
	s.mu.Unlock()

	result, err := s.orchestrator.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshRunning = false
	s.lastRefreshRun = time.Now()
	s.refreshRuns++

	if err != nil {
		s.logger.Printf("Refresh error: %v", err)
		return
	}
	s.lastUsers = len(result.Users)
	s.lastFailed = result.Failed
}

func (s *Server) countUptime(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observability.DefaultMetrics.UptimeSeconds.Inc()
		}
	}
}

func (s *Server) status() api.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return api.StatusResponse{
		Status:            "running",
		Uptime:            time.Since(s.startedAt).Round(time.Second).String(),
		StartedAt:         s.startedAt,
		LastRefreshRun:    s.lastRefreshRun,
		RefreshRuns:       s.refreshRuns,
		RefreshRunning:    s.refreshRunning,
		LastRefreshUsers:  s.lastUsers,
		LastRefreshFailed: s.lastFailed,
	}
}

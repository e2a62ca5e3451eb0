package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robo-advisor-lab/internal/config"
	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/ingestion"
	"robo-advisor-lab/internal/storage/migrations"
)

func main() {
	config.LoadEnvFile(".env")

	// Parse flags
	postgresDSN := flag.String("postgres-dsn", config.Env("POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", config.Env("CLICKHOUSE_DSN", ""), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (dry run)")
	migrate := flag.Bool("migrate", true, "Apply migrations before importing")
	instrumentsCSV := flag.String("instruments", "", "Instruments CSV (symbol,name,dividend_yield)")
	holdingsCSV := flag.String("holdings", "", "Holdings CSV (user_id,symbol,quantity,avg_price)")
	pricesCSV := flag.String("prices", "", "Prices CSV (symbol,date,close,dividend)")
	inflationCSV := flag.String("inflation", "", "Inflation CSV (date,rate_pct)")
	seedFrom := flag.String("seed-inflation-from", "", "Seed generated inflation from this date (YYYY-MM-DD)")
	seedTo := flag.String("seed-inflation-to", "", "Seed generated inflation up to this date (default today)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		InstrumentStore: stores.Instruments,
		HoldingStore:    stores.Holdings,
		PriceStore:      stores.Prices,
		InflationStore:  stores.Inflation,
	})

	steps := []struct {
		name string
		path string
		run  func(context.Context, *os.File) (ingestion.Result, error)
	}{
		{"instruments", *instrumentsCSV, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportInstruments(ctx, f) }},
		{"holdings", *holdingsCSV, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportHoldings(ctx, f) }},
		{"prices", *pricesCSV, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportPrices(ctx, f) }},
		{"inflation", *inflationCSV, func(ctx context.Context, f *os.File) (ingestion.Result, error) { return mgr.ImportInflation(ctx, f) }},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		res, err := importFile(ctx, step.path, step.run)
		if err != nil {
			logger.Fatalf("import %s: %v", step.name, err)
		}
		logger.Printf("%s: %d inserted, %d skipped", step.name, res.Inserted, res.Skipped)
	}

	if *seedFrom != "" {
		from, to, err := seedRange(*seedFrom, *seedTo)
		if err != nil {
			logger.Fatalf("seed inflation: %v", err)
		}
		res, err := mgr.SeedInflation(ctx, from, to)
		if err != nil {
			logger.Fatalf("seed inflation: %v", err)
		}
		logger.Printf("inflation seed %s..%s: %d inserted, %d skipped",
			from.Format(domain.DateLayout), to.Format(domain.DateLayout), res.Inserted, res.Skipped)
	}

	logger.Println("Ingest complete")
}

func importFile(ctx context.Context, path string, run func(context.Context, *os.File) (ingestion.Result, error)) (ingestion.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingestion.Result{}, err
	}
	defer f.Close()
	return run(ctx, f)
}

func seedRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse(domain.DateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse from: %w", err)
	}
	to := domain.Day(time.Now())
	if toStr != "" {
		if to, err = time.Parse(domain.DateLayout, toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse to: %w", err)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to %s is before from %s", toStr, fromStr)
	}
	return from, to, nil
}

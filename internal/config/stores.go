package config

import (
	"context"
	"errors"
	"fmt"

	"robo-advisor-lab/internal/storage"
	chstore "robo-advisor-lab/internal/storage/clickhouse"
	"robo-advisor-lab/internal/storage/memory"
	pgstore "robo-advisor-lab/internal/storage/postgres"
)

// StoreConfig selects the storage backend.
type StoreConfig struct {
	UseMemory     bool
	PostgresDSN   string
	ClickhouseDSN string
}

// Stores holds every store the binaries use.
type Stores struct {
	Instruments storage.InstrumentStore
	Holdings    storage.HoldingStore
	Prices      storage.PriceStore
	Inflation   storage.InflationStore
	Reports     storage.ReportStore

	// Set only for database-backed stores.
	Pool *pgstore.Pool
	Conn *chstore.Conn
}

// ErrMissingDSN is returned when database stores are requested without DSNs.
var ErrMissingDSN = errors.New("postgres and clickhouse DSNs are required unless -use-memory is set")

// NewMemoryStores creates empty in-memory stores.
func NewMemoryStores() *Stores {
	return &Stores{
		Instruments: memory.NewInstrumentStore(),
		Holdings:    memory.NewHoldingStore(),
		Prices:      memory.NewPriceStore(),
		Inflation:   memory.NewInflationStore(),
		Reports:     memory.NewReportStore(),
	}
}

// OpenStores creates stores for cfg and returns a cleanup func that closes
// any database connections.
func OpenStores(ctx context.Context, cfg StoreConfig) (*Stores, func(), error) {
	if cfg.UseMemory {
		return NewMemoryStores(), func() {}, nil
	}
	if cfg.PostgresDSN == "" || cfg.ClickhouseDSN == "" {
		return nil, nil, ErrMissingDSN
	}

	// PostgreSQL: reference data, holdings, inflation, reports
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse: daily prices
	conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &Stores{
		Instruments: pgstore.NewInstrumentStore(pool),
		Holdings:    pgstore.NewHoldingStore(pool),
		Inflation:   pgstore.NewInflationStore(pool),
		Reports:     pgstore.NewReportStore(pool),
		Prices:      chstore.NewPriceStore(conn),
		Pool:        pool,
		Conn:        conn,
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

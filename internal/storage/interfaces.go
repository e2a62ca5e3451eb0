package storage

import (
	"context"
	"time"

	"robo-advisor-lab/internal/domain"
)

// PriceStore provides access to daily prices storage.
type PriceStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetBySymbol retrieves all points for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.PricePoint, error)

	// GetByDateRange retrieves points for a symbol within [from, to] (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*domain.PricePoint, error)

	// GetLatest retrieves the most recent point for a symbol. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, symbol string) (*domain.PricePoint, error)

	// GetTrailingDividends sums dividends per unit paid by symbol within [from, to] (inclusive).
	GetTrailingDividends(ctx context.Context, symbol string, from, to time.Time) (float64, error)
}

// InstrumentStore provides access to instruments storage.
type InstrumentStore interface {
	// Insert adds a new instrument. Returns ErrDuplicateKey if symbol exists.
	Insert(ctx context.Context, i *domain.Instrument) error

	// GetBySymbol retrieves an instrument. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error)

	// GetAll retrieves all instruments, ordered by symbol ASC.
	GetAll(ctx context.Context) ([]*domain.Instrument, error)
}

// HoldingStore provides access to holdings storage.
type HoldingStore interface {
	// Insert adds a new holding. Returns ErrDuplicateKey if (user_id, symbol) exists.
	Insert(ctx context.Context, h *domain.Holding) error

	// GetByUser retrieves all holdings of a user, ordered by symbol ASC.
	// Returns an empty slice for unknown users.
	GetByUser(ctx context.Context, userID string) ([]*domain.Holding, error)

	// ListUsers returns the distinct users that hold anything, ordered ASC.
	ListUsers(ctx context.Context) ([]string, error)
}

// InflationStore provides access to monthly inflation storage.
type InflationStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate date.
	InsertBulk(ctx context.Context, points []*domain.InflationPoint) error

	// GetByDateRange retrieves points within [from, to] (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*domain.InflationPoint, error)
}

// ReportStore provides access to simulation_reports storage.
type ReportStore interface {
	// Insert adds a new report. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.ReportRecord) error

	// GetByID retrieves a report by run ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.ReportRecord, error)

	// GetByUser retrieves all reports for a user, ordered by created_at DESC.
	GetByUser(ctx context.Context, userID string) ([]*domain.ReportRecord, error)
}

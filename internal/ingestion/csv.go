package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"robo-advisor-lab/internal/domain"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Column layouts, matched case-insensitively against the header row.
var (
	instrumentColumns = []string{"symbol", "name", "dividend_yield"}
	holdingColumns    = []string{"user_id", "symbol", "quantity", "avg_price"}
	priceColumns      = []string{"symbol", "date", "close", "dividend"}
	inflationColumns  = []string{"date", "rate_pct"}
)

// csvTable is a parsed CSV file with column lookup by name.
type csvTable struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return &csvTable{index: index, rows: rows}, nil
}

// get returns the trimmed cell for col, or "" when the row is short or the
// column is absent.
func (t *csvTable) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string, line int, col string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: parse %s %q: %w", line, col, s, err)
	}
	return f, nil
}

func parseDate(s string, line int) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: parse date %q: %w", line, s, err)
	}
	return d, nil
}

// ReadInstruments parses symbol,name,dividend_yield rows.
// An empty yield is stored as unknown.
func ReadInstruments(r io.Reader) ([]*domain.Instrument, error) {
	t, err := readTable(r, instrumentColumns[:2])
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Instrument, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		inst := &domain.Instrument{
			Symbol: t.get(row, "symbol"),
			Name:   t.get(row, "name"),
		}
		if inst.Symbol == "" {
			return nil, fmt.Errorf("line %d: empty symbol", line)
		}
		if raw := t.get(row, "dividend_yield"); raw != "" {
			y, err := parseFloat(raw, line, "dividend_yield")
			if err != nil {
				return nil, err
			}
			inst.DividendYield = &y
		}
		out = append(out, inst)
	}
	return out, nil
}

// ReadHoldings parses user_id,symbol,quantity[,avg_price] rows.
func ReadHoldings(r io.Reader) ([]*domain.Holding, error) {
	t, err := readTable(r, holdingColumns[:3])
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Holding, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		h := &domain.Holding{
			UserID: t.get(row, "user_id"),
			Symbol: t.get(row, "symbol"),
		}
		if h.UserID == "" || h.Symbol == "" {
			return nil, fmt.Errorf("line %d: empty user_id or symbol", line)
		}
		if h.Quantity, err = parseFloat(t.get(row, "quantity"), line, "quantity"); err != nil {
			return nil, err
		}
		if raw := t.get(row, "avg_price"); raw != "" {
			if h.AvgPrice, err = parseFloat(raw, line, "avg_price"); err != nil {
				return nil, err
			}
		}
		out = append(out, h)
	}
	return out, nil
}

// ReadPrices parses symbol,date,close[,dividend] rows.
// Rows with a non-positive close are rejected.
func ReadPrices(r io.Reader) ([]*domain.PricePoint, error) {
	t, err := readTable(r, priceColumns[:3])
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PricePoint, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		p := &domain.PricePoint{Symbol: t.get(row, "symbol")}
		if p.Symbol == "" {
			return nil, fmt.Errorf("line %d: empty symbol", line)
		}
		if p.Date, err = parseDate(t.get(row, "date"), line); err != nil {
			return nil, err
		}
		if p.Close, err = parseFloat(t.get(row, "close"), line, "close"); err != nil {
			return nil, err
		}
		if p.Close <= 0 {
			return nil, fmt.Errorf("line %d: close must be positive, got %v", line, p.Close)
		}
		if raw := t.get(row, "dividend"); raw != "" {
			if p.Dividend, err = parseFloat(raw, line, "dividend"); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadInflation parses date,rate_pct rows.
func ReadInflation(r io.Reader) ([]*domain.InflationPoint, error) {
	t, err := readTable(r, inflationColumns)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.InflationPoint, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		p := &domain.InflationPoint{}
		if p.Date, err = parseDate(t.get(row, "date"), line); err != nil {
			return nil, err
		}
		if p.RatePct, err = parseFloat(t.get(row, "rate_pct"), line, "rate_pct"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore.
type ReportStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ReportRecord // keyed by run_id
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		data: make(map[string]*domain.ReportRecord),
	}
}

// Insert adds a new report. Returns ErrDuplicateKey if run_id exists.
func (s *ReportStore) Insert(_ context.Context, r *domain.ReportRecord) error {
	if r == nil || r.RunID == "" || r.Report == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.RunID] = copyRecord(r)
	return nil
}

// GetByID retrieves a report by run ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(_ context.Context, runID string) (*domain.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRecord(r), nil
}

// GetByUser retrieves all reports for a user, ordered by created_at DESC.
func (s *ReportStore) GetByUser(_ context.Context, userID string) ([]*domain.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ReportRecord
	for _, r := range s.data {
		if r.UserID == userID {
			result = append(result, copyRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

// copyRecord copies a record deep enough that callers cannot mutate stored series.
func copyRecord(r *domain.ReportRecord) *domain.ReportRecord {
	c := *r
	report := *r.Report
	report.Series = append([]domain.ValuePoint(nil), r.Report.Series...)
	report.SeriesReal = append([]domain.ValuePoint(nil), r.Report.SeriesReal...)
	report.InflationSeries = append([]domain.InflationPoint(nil), r.Report.InflationSeries...)
	if r.Report.Benchmark != nil {
		bench := *r.Report.Benchmark
		bench.Series = append([]domain.ValuePoint(nil), r.Report.Benchmark.Series...)
		report.Benchmark = &bench
	}
	c.Report = &report
	return &c
}

var _ storage.ReportStore = (*ReportStore)(nil)

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

// ReportStore implements storage.ReportStore using PostgreSQL.
// The report body is stored as JSONB.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new ReportStore.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// Insert adds a new report. Returns ErrDuplicateKey if run_id exists.
func (s *ReportStore) Insert(ctx context.Context, r *domain.ReportRecord) (err error) {
	defer func(start time.Time) { observe("insert_report", start, err) }(time.Now())

	if r == nil || r.RunID == "" || r.Report == nil {
		return storage.ErrInvalidInput
	}

	body, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var userID *string
	if r.UserID != "" {
		userID = &r.UserID
	}

	query := `
		INSERT INTO simulation_reports (run_id, user_id, source, created_at, report)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query, r.RunID, userID, string(r.Source), r.CreatedAt, body)
	if err != nil {
		return translate("insert report", err)
	}
	return nil
}

// GetByID retrieves a report by run ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(ctx context.Context, runID string) (_ *domain.ReportRecord, err error) {
	defer func(start time.Time) { observe("get_report", start, err) }(time.Now())

	query := `
		SELECT run_id, user_id, source, created_at, report
		FROM simulation_reports
		WHERE run_id = $1
	`

	r, err := scanReport(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		return nil, translate("get report by id", err)
	}
	return r, nil
}

// GetByUser retrieves all reports for a user, ordered by created_at DESC.
func (s *ReportStore) GetByUser(ctx context.Context, userID string) (_ []*domain.ReportRecord, err error) {
	defer func(start time.Time) { observe("get_reports_by_user", start, err) }(time.Now())

	query := `
		SELECT run_id, user_id, source, created_at, report
		FROM simulation_reports
		WHERE user_id = $1
		ORDER BY created_at DESC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get reports by user: %w", err)
	}
	defer rows.Close()

	var result []*domain.ReportRecord
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return result, nil
}

func scanReport(row pgx.Row) (*domain.ReportRecord, error) {
	var (
		r      domain.ReportRecord
		userID *string
		source string
		body   []byte
	)
	if err := row.Scan(&r.RunID, &userID, &source, &r.CreatedAt, &body); err != nil {
		return nil, err
	}
	if userID != nil {
		r.UserID = *userID
	}
	r.Source = domain.ReportSource(source)
	r.CreatedAt = r.CreatedAt.UTC()

	var report domain.PerformanceReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", r.RunID, err)
	}
	r.Report = &report
	return &r, nil
}

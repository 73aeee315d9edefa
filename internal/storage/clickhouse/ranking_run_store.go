package clickhouse

import (
	"context"
	"fmt"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// RankingRunStore implements storage.RankingRunStore using ClickHouse.
// A run is stored as one header row in ranking_runs plus one row per
// report line in ranking_run_rows.
type RankingRunStore struct {
	conn *Conn
}

// NewRankingRunStore creates a new RankingRunStore.
func NewRankingRunStore(conn *Conn) *RankingRunStore {
	return &RankingRunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RankingRunStore = (*RankingRunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
// MergeTree does not enforce uniqueness, so append-only semantics are
// kept with an explicit pre-insert existence check.
func (s *RankingRunStore) Insert(ctx context.Context, r *domain.RankingRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, r.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	periods := make([]int32, len(r.Periods))
	for i, p := range r.Periods {
		periods[i] = int32(p)
	}

	err = s.conn.Exec(ctx, `
		INSERT INTO ranking_runs (run_id, generated_at, periods, threshold)
		VALUES (?, ?, ?, ?)
	`, r.RunID, r.GeneratedAt, periods, int32(r.Threshold))
	if err != nil {
		return fmt.Errorf("insert ranking run: %w", err)
	}

	if len(r.Rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ranking_run_rows (
			run_id, period, channel, customer_id, total, customer_rank
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range r.Rows {
		err = batch.Append(
			r.RunID, int32(row.Period), string(row.Channel),
			row.CustomerID, row.Total, int32(row.Rank),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RankingRunStore) GetByRunID(ctx context.Context, runID string) (*domain.RankingRun, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT run_id, generated_at, periods, threshold
		FROM ranking_runs
		WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ranking run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate ranking run rows: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	run, err := scanRunHeader(rows)
	if err != nil {
		return nil, err
	}

	run.Rows, err = s.loadRows(ctx, runID)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// GetAll retrieves all runs, ordered by generated_at ASC, run_id ASC.
func (s *RankingRunStore) GetAll(ctx context.Context) ([]*domain.RankingRun, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT run_id, generated_at, periods, threshold
		FROM ranking_runs
		ORDER BY generated_at ASC, run_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ranking runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RankingRun
	for rows.Next() {
		run, err := scanRunHeader(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking runs: %w", err)
	}

	for _, run := range runs {
		run.Rows, err = s.loadRows(ctx, run.RunID)
		if err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// loadRows loads the report lines of one run, in report order.
func (s *RankingRunStore) loadRows(ctx context.Context, runID string) ([]*domain.TopNRow, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT period, channel, customer_id, total, customer_rank
		FROM ranking_run_rows
		WHERE run_id = ?
		ORDER BY period ASC, channel ASC, total DESC, customer_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	var result []*domain.TopNRow
	for rows.Next() {
		var (
			row     domain.TopNRow
			period  int32
			channel string
			rank    int32
		)
		if err := rows.Scan(&period, &channel, &row.CustomerID, &row.Total, &rank); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		row.Period = int(period)
		row.Channel = domain.Channel(channel)
		row.Rank = int(rank)
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return result, nil
}

// exists checks whether a run id is already stored.
func (s *RankingRunStore) exists(ctx context.Context, runID string) (bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count() FROM ranking_runs WHERE run_id = ?
	`, runID)

	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanRunHeader scans one header row; the caller loads report lines.
type headerScanner interface {
	Scan(dest ...any) error
}

func scanRunHeader(row headerScanner) (*domain.RankingRun, error) {
	var (
		run         domain.RankingRun
		periods     []int32
		generatedAt int64
		threshold   int32
	)
	if err := row.Scan(&run.RunID, &generatedAt, &periods, &threshold); err != nil {
		return nil, fmt.Errorf("scan ranking run: %w", err)
	}

	run.GeneratedAt = generatedAt
	run.Threshold = int(threshold)
	run.Periods = make([]int, len(periods))
	for i, p := range periods {
		run.Periods[i] = int(p)
	}
	return &run, nil
}

// Package postgres implements repositories against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/planner-ranker/internal/domain"
)

// ErrNotFound is returned when a query matches no rows.
var ErrNotFound = errors.New("not found")

// HistoryRepo stores normalized historical performance records.
type HistoryRepo struct{ db *sql.DB }

// NewHistoryRepo creates a Postgres-backed history repository.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// SaveBatch inserts a batch of records in a single transaction. A record
// that duplicates an existing (plan, publisher, date) row replaces it.
func (r *HistoryRepo) SaveBatch(ctx context.Context, records []domain.HistoricalRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_history (plan_id, publisher, record_date, revenue,
		       distribution_count, clicks, subcategory)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (plan_id, publisher, record_date)
		DO UPDATE SET revenue = EXCLUDED.revenue,
		       distribution_count = EXCLUDED.distribution_count,
		       clicks = EXCLUDED.clicks,
		       subcategory = EXCLUDED.subcategory
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.PlanID, rec.Publisher, rec.Date, rec.Revenue,
			rec.DistributionCount, rec.Clicks, rec.Subcategory,
		); err != nil {
			return fmt.Errorf("insert history for %s: %w", rec.PlanID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadWindow returns all records with dates inside [since, until].
func (r *HistoryRepo) LoadWindow(ctx context.Context, since, until time.Time) ([]domain.HistoricalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan_id, COALESCE(publisher,''), record_date, revenue,
		       distribution_count, clicks, COALESCE(subcategory,'')
		FROM plan_history
		WHERE record_date BETWEEN $1 AND $2
		ORDER BY plan_id, record_date
	`, since, until)
	if err != nil {
		return nil, fmt.Errorf("load history window: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoricalRecord
	for rows.Next() {
		var rec domain.HistoricalRecord
		if err := rows.Scan(
			&rec.PlanID, &rec.Publisher, &rec.Date, &rec.Revenue,
			&rec.DistributionCount, &rec.Clicks, &rec.Subcategory,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return records, nil
}

// LoadPlanWindow returns a single plan's records inside [since, until].
func (r *HistoryRepo) LoadPlanWindow(ctx context.Context, planID string, since, until time.Time) ([]domain.HistoricalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan_id, COALESCE(publisher,''), record_date, revenue,
		       distribution_count, clicks, COALESCE(subcategory,'')
		FROM plan_history
		WHERE plan_id = $1 AND record_date BETWEEN $2 AND $3
		ORDER BY record_date
	`, planID, since, until)
	if err != nil {
		return nil, fmt.Errorf("load plan history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoricalRecord
	for rows.Next() {
		var rec domain.HistoricalRecord
		if err := rows.Scan(
			&rec.PlanID, &rec.Publisher, &rec.Date, &rec.Revenue,
			&rec.DistributionCount, &rec.Clicks, &rec.Subcategory,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// LatestDate returns the most recent record date, or ErrNotFound when the
// table is empty.
func (r *HistoryRepo) LatestDate(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(record_date) FROM plan_history`,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest history date: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, ErrNotFound
	}
	return latest.Time, nil
}

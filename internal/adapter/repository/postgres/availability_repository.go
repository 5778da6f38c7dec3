package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rorschach/staybooking/internal/core/domain"
)

const pqUniqueViolation = "23505"

// AvailabilityRepository persists cells in stay_availability, primary key
// (stay_id, date). Range mutations count affected rows against the range
// width; a shortfall aborts the surrounding transaction, so the
// all-or-nothing contract falls out of the rollback.
type AvailabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) Initialize(ctx context.Context, stayID uuid.UUID, start time.Time, days int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
	INSERT INTO stay_availability (stay_id, date, state)
	VALUES ($1, $2, $3)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare availability insert: %w", err)
	}
	defer stmt.Close()

	day := domain.Day(start)
	for i := 0; i < days; i++ {
		if _, err := stmt.ExecContext(ctx, stayID, day, domain.DayAvailable); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
				return domain.ErrWindowExists
			}
			return fmt.Errorf("failed to insert cell %s: %w", day.Format("2006-01-02"), err)
		}
		day = day.AddDate(0, 0, 1)
	}

	return tx.Commit()
}

func (r *AvailabilityRepository) AvailableDates(ctx context.Context, stayID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := `
	SELECT date FROM stay_availability
	WHERE stay_id = $1 AND date >= $2 AND date <= $3 AND state = $4
	ORDER BY date
	`
	return r.queryDates(ctx, query, stayID, domain.Day(from), domain.Day(to), domain.DayAvailable)
}

func (r *AvailabilityRepository) AllAvailableDates(ctx context.Context, stayID uuid.UUID) ([]time.Time, error) {
	query := `
	SELECT date FROM stay_availability
	WHERE stay_id = $1 AND state = $2
	ORDER BY date
	`
	return r.queryDates(ctx, query, stayID, domain.DayAvailable)
}

func (r *AvailabilityRepository) ReserveRange(ctx context.Context, stayID uuid.UUID, from, to time.Time) error {
	return r.flipRange(ctx, stayID, from, to, domain.DayAvailable, domain.DayReserved, domain.ErrCollision)
}

func (r *AvailabilityRepository) ReleaseRange(ctx context.Context, stayID uuid.UUID, from, to time.Time) error {
	return r.flipRange(ctx, stayID, from, to, domain.DayReserved, domain.DayAvailable, domain.ErrLedgerCorrupt)
}

func (r *AvailabilityRepository) flipRange(ctx context.Context, stayID uuid.UUID, from, to time.Time, wantState, newState domain.DayState, mismatch error) error {
	from, to = domain.Day(from), domain.Day(to)
	expected := int64(domain.Nights(from, to)) + 1

	query := `
	UPDATE stay_availability
	SET state = $1
	WHERE stay_id = $2 AND date >= $3 AND date <= $4 AND state = $5
	`

	result, err := querier(ctx, r.db).ExecContext(ctx, query, newState, stayID, from, to, wantState)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != expected {
		return mismatch
	}
	return nil
}

func (r *AvailabilityRepository) queryDates(ctx context.Context, query string, args ...any) ([]time.Time, error) {
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, domain.Day(d))
	}
	return dates, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
)

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `
	INSERT INTO reservations (id, stay_id, guest_id, checkin_date, checkout_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querier(ctx, r.db).ExecContext(ctx, query,
		res.ID, res.StayID, res.GuestID, res.CheckinDate, res.CheckoutDate, res.CreatedAt)
	return err
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `
	SELECT id, stay_id, guest_id, checkin_date, checkout_date, created_at
	FROM reservations
	WHERE id = $1
	`

	var res domain.Reservation
	err := querier(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.StayID,
		&res.GuestID,
		&res.CheckinDate,
		&res.CheckoutDate,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	res.CheckinDate = domain.Day(res.CheckinDate)
	res.CheckoutDate = domain.Day(res.CheckoutDate)
	return &res, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := querier(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Reservation, error) {
	query := `
	SELECT id, stay_id, guest_id, checkin_date, checkout_date, created_at
	FROM reservations
	WHERE guest_id = $1
	ORDER BY checkin_date, created_at
	`
	return r.queryList(ctx, query, guestID)
}

func (r *ReservationRepository) ListByStay(ctx context.Context, stayID uuid.UUID) ([]domain.Reservation, error) {
	query := `
	SELECT id, stay_id, guest_id, checkin_date, checkout_date, created_at
	FROM reservations
	WHERE stay_id = $1
	ORDER BY checkin_date, created_at
	`
	return r.queryList(ctx, query, stayID)
}

func (r *ReservationRepository) ListByStayCheckoutAfter(ctx context.Context, stayID uuid.UUID, date time.Time) ([]domain.Reservation, error) {
	query := `
	SELECT id, stay_id, guest_id, checkin_date, checkout_date, created_at
	FROM reservations
	WHERE stay_id = $1 AND checkout_date > $2
	ORDER BY checkin_date, created_at
	`
	return r.queryList(ctx, query, stayID, domain.Day(date))
}

func (r *ReservationRepository) queryList(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.StayID,
			&res.GuestID,
			&res.CheckinDate,
			&res.CheckoutDate,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		res.CheckinDate = domain.Day(res.CheckinDate)
		res.CheckoutDate = domain.Day(res.CheckoutDate)
		out = append(out, res)
	}
	return out, rows.Err()
}

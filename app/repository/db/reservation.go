package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reservation-service/app/domain"
	"time"
)

type reservationRepository struct {
	conn *sql.DB
}

func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{db}
}

func (r *reservationRepository) FindLive(ctx context.Context, productID, sessionID string, now time.Time) (*domain.Reservation, error) {
	query := `SELECT id, product_id, session_id, quantity, created_at, expires_at
	FROM stock_reservations
	WHERE product_id = $1 AND session_id = $2 AND expires_at > $3`

	var reservation domain.Reservation
	err := r.conn.QueryRowContext(ctx, query, productID, sessionID, now).Scan(&reservation.ID,
		&reservation.ProductID, &reservation.SessionID, &reservation.Quantity,
		&reservation.CreatedAt, &reservation.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.ErrorContext(ctx, "[reservationRepository] FindLive", "queryRowContext", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &reservation, nil
}

func (r *reservationRepository) SumLiveQuantity(ctx context.Context, productID, excludeSessionID string, now time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_reservations
	WHERE product_id = $1 AND expires_at > $2`
	args := []any{productID, now}

	if excludeSessionID != "" {
		query += ` AND session_id != $3`
		args = append(args, excludeSessionID)
	}

	var total int64
	err := r.conn.QueryRowContext(ctx, query, args...).Scan(&total)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] SumLiveQuantity", "queryRowContext", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return total, nil
}

func (r *reservationRepository) CountLive(ctx context.Context, productID string, now time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM stock_reservations WHERE product_id = $1 AND expires_at > $2`

	var count int64
	err := r.conn.QueryRowContext(ctx, query, productID, now).Scan(&count)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] CountLive", "queryRowContext", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return count, nil
}

// Upsert coalesces onto the (product_id, session_id) row. An expired row for
// the same pair is simply overwritten; it was already dead for every reader.
func (r *reservationRepository) Upsert(ctx context.Context, reservation *domain.Reservation, tx *sql.Tx) error {
	query := `INSERT INTO stock_reservations (product_id, session_id, quantity, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (product_id, session_id)
	DO UPDATE SET quantity = EXCLUDED.quantity, expires_at = EXCLUDED.expires_at
	RETURNING id, created_at`

	err := tx.QueryRowContext(ctx, query, reservation.ProductID, reservation.SessionID,
		reservation.Quantity, reservation.ExpiresAt).Scan(&reservation.ID, &reservation.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] Upsert", "queryRowContext", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *reservationRepository) UpdateQuantity(ctx context.Context, id, quantity int64, tx *sql.Tx) error {
	query := `UPDATE stock_reservations SET quantity = $1 WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] UpdateQuantity", "execContext", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `DELETE FROM stock_reservations WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] Delete", "execContext", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *reservationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM stock_reservations WHERE expires_at <= $1`
	res, err := r.conn.ExecContext(ctx, query, now)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] DeleteExpired", "execContext", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] DeleteExpired", "rowsAffected", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return count, nil
}

func (r *reservationRepository) CountByExpiry(ctx context.Context, now time.Time) (domain.SweepStats, error) {
	query := `SELECT
	COUNT(*) FILTER (WHERE expires_at <= $1),
	COUNT(*) FILTER (WHERE expires_at > $1)
	FROM stock_reservations`

	var stats domain.SweepStats
	err := r.conn.QueryRowContext(ctx, query, now).Scan(&stats.Expired, &stats.Active)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationRepository] CountByExpiry", "queryRowContext", err)
		return stats, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	stats.Total = stats.Expired + stats.Active
	return stats, nil
}

package domain

import (
	"context"
	"database/sql"
	"time"
)

// Reservation is a temporary, expiring claim on a quantity of a product's
// stock by one anonymous shopper session. At most one live row exists per
// (product, session) pair; repeated reserves coalesce into it.
type Reservation struct {
	ID        int64     `json:"id"`
	ProductID string    `json:"product_id"`
	SessionID string    `json:"session_id"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the reservation still counts against availability.
// Expiry is a read-time predicate; an un-swept expired row is already dead.
func (r Reservation) Live(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

type ReserveRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type ReleaseRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	// Quantity nil means release the whole reservation.
	Quantity *int64 `json:"quantity" validate:"omitempty,gt=0"`
}

type ConsumeRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	SessionID string  `json:"session_id" validate:"required"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	Reference *string `json:"reference"`
}

type ReleaseResponse struct {
	Released  int64 `json:"released"`
	Remaining int64 `json:"remaining"`
}

type Availability struct {
	ProductID          string `json:"product_id"`
	TotalStock         int64  `json:"total_stock"`
	Reserved           int64  `json:"reserved"`
	Available          int64  `json:"available"`
	ActiveReservations int64  `json:"active_reservations"`
}

type SweepStats struct {
	Expired int64 `json:"expired"`
	Active  int64 `json:"active"`
	Total   int64 `json:"total"`
}

type ReservationRepository interface {
	FindLive(ctx context.Context, productID, sessionID string, now time.Time) (*Reservation, error)
	SumLiveQuantity(ctx context.Context, productID, excludeSessionID string, now time.Time) (int64, error)
	CountLive(ctx context.Context, productID string, now time.Time) (int64, error)
	Upsert(ctx context.Context, reservation *Reservation, tx *sql.Tx) error
	UpdateQuantity(ctx context.Context, id, quantity int64, tx *sql.Tx) error
	Delete(ctx context.Context, id int64, tx *sql.Tx) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountByExpiry(ctx context.Context, now time.Time) (SweepStats, error)
}

// ReservationService enforces the no-oversell invariant: for any product the
// sum of live reservation quantities never exceeds the product's stock.
type ReservationService interface {
	Reserve(ctx context.Context, req ReserveRequest) (Reservation, error)
	Release(ctx context.Context, req ReleaseRequest) (ReleaseResponse, error)
	Consume(ctx context.Context, req ConsumeRequest) error
	SweepExpired(ctx context.Context) (int64, error)
	GetAvailability(ctx context.Context, productID string) (Availability, error)
	GetSweepStats(ctx context.Context) (SweepStats, error)
}

package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"reservation-service/app/domain"
	"sync"
	"time"
)

// fakeProductRepo serializes whole transactions behind one mutex, standing in
// for the per-product row lock the real repository takes with FOR UPDATE.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product

	failTxTimes int
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	m := make(map[string]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepo{products: m}
}

func (f *fakeProductRepo) GetByID(ctx context.Context, productID string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) LockForUpdate(ctx context.Context, productID string, tx *sql.Tx) (domain.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) UpdateStockQuantity(ctx context.Context, productID string, quantity int64, tx *sql.Tx) error {
	product, ok := f.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	product.StockQuantity = quantity
	f.products[productID] = product
	return nil
}

func (f *fakeProductRepo) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failTxTimes > 0 {
		f.failTxTimes--
		return fmt.Errorf("%w: connection reset", domain.ErrStoreUnavailable)
	}

	return fn(ctx, nil)
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[int64]domain.Reservation
	nextID       int64
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[int64]domain.Reservation)}
}

func (f *fakeReservationRepo) FindLive(ctx context.Context, productID, sessionID string, now time.Time) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ProductID == productID && r.SessionID == sessionID && r.ExpiresAt.After(now) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) SumLiveQuantity(ctx context.Context, productID, excludeSessionID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, r := range f.reservations {
		if r.ProductID != productID || !r.ExpiresAt.After(now) {
			continue
		}
		if excludeSessionID != "" && r.SessionID == excludeSessionID {
			continue
		}
		total += r.Quantity
	}
	return total, nil
}

func (f *fakeReservationRepo) CountLive(ctx context.Context, productID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.reservations {
		if r.ProductID == productID && r.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) Upsert(ctx context.Context, reservation *domain.Reservation, tx *sql.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reservations {
		if r.ProductID == reservation.ProductID && r.SessionID == reservation.SessionID {
			r.Quantity = reservation.Quantity
			r.ExpiresAt = reservation.ExpiresAt
			f.reservations[id] = r
			reservation.ID = r.ID
			reservation.CreatedAt = r.CreatedAt
			return nil
		}
	}

	f.nextID++
	reservation.ID = f.nextID
	reservation.CreatedAt = time.Now()
	f.reservations[reservation.ID] = *reservation
	return nil
}

func (f *fakeReservationRepo) UpdateQuantity(ctx context.Context, id, quantity int64, tx *sql.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil
	}
	r.Quantity = quantity
	f.reservations[id] = r
	return nil
}

func (f *fakeReservationRepo) Delete(ctx context.Context, id int64, tx *sql.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reservations, id)
	return nil
}

func (f *fakeReservationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for id, r := range f.reservations {
		if !r.ExpiresAt.After(now) {
			delete(f.reservations, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) CountByExpiry(ctx context.Context, now time.Time) (domain.SweepStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats domain.SweepStats
	for _, r := range f.reservations {
		if r.ExpiresAt.After(now) {
			stats.Active++
		} else {
			stats.Expired++
		}
	}
	stats.Total = stats.Active + stats.Expired
	return stats, nil
}

func (f *fakeReservationRepo) rows() []domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, r)
	}
	return out
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []domain.StockMovement
	nextID    int64
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{}
}

func (f *fakeMovementRepo) Create(ctx context.Context, movement *domain.StockMovement, tx *sql.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	movement.ID = f.nextID
	movement.CreatedAt = time.Now()
	f.movements = append(f.movements, *movement)
	return nil
}

func (f *fakeMovementRepo) GetList(ctx context.Context, param domain.ListMovementsRequest) ([]domain.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StockMovement
	for _, m := range f.movements {
		if param.ProductID != "" && m.ProductID != param.ProductID {
			continue
		}
		if param.Type != "" && string(m.Type) != param.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fakeBroker struct {
	mu       sync.Mutex
	messages []domain.StockMessage
}

func (f *fakeBroker) PublishStockAvailable(ctx context.Context, data domain.StockMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeBroker) published() []domain.StockMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StockMessage(nil), f.messages...)
}

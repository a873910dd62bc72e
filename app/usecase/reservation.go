package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reservation-service/app/domain"
	"reservation-service/config"
	"reservation-service/pkg/clock"
)

type reservationUsecase struct {
	productRepo     domain.ProductRepository
	reservationRepo domain.ReservationRepository
	movementRepo    domain.MovementRepository
	broker          domain.BrokerPublisher
	clk             clock.Clock
	cfg             *config.Config
}

func NewReservationUsecase(
	productRepo domain.ProductRepository,
	reservationRepo domain.ReservationRepository,
	movementRepo domain.MovementRepository,
	broker domain.BrokerPublisher,
	clk clock.Clock,
	cfg *config.Config) domain.ReservationService {
	return &reservationUsecase{productRepo, reservationRepo, movementRepo, broker, clk, cfg}
}

// Reserve grants or grows a session's hold on a product. The whole
// check-then-commit runs under the product row lock, so two sessions racing
// for the last units serialize and only one of them can win it.
func (u *reservationUsecase) Reserve(ctx context.Context, req domain.ReserveRequest) (domain.Reservation, error) {
	if req.Quantity <= 0 {
		return domain.Reservation{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}

	var committed domain.Reservation
	err := withRetry(ctx, func() error {
		return u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			now := u.clk.Now()

			product, err := u.productRepo.LockForUpdate(ctx, req.ProductID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Reserve", "lockForUpdate", err)
				return err
			}

			// Live reservations held by other sessions. Writers all hold the
			// product lock, so this read cannot race a competing commit.
			otherReserved, err := u.reservationRepo.SumLiveQuantity(ctx, req.ProductID, req.SessionID, now)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Reserve", "sumLiveQuantity", err)
				return err
			}

			existing, err := u.reservationRepo.FindLive(ctx, req.ProductID, req.SessionID, now)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Reserve", "findLive", err)
				return err
			}

			var existingQty int64
			if existing != nil {
				existingQty = existing.Quantity
			}

			requestedTotal := existingQty + req.Quantity
			available := product.StockQuantity - otherReserved
			if requestedTotal > available {
				slog.InfoContext(ctx, "[reservationUsecase] Reserve", "insufficientStock", available-existingQty,
					"product_id", req.ProductID, "requested", requestedTotal)
				return domain.NewInsufficientStockError(req.ProductID, available-existingQty)
			}

			reservation := &domain.Reservation{
				ProductID: req.ProductID,
				SessionID: req.SessionID,
				Quantity:  requestedTotal,
				ExpiresAt: now.Add(u.cfg.Reservation.Window()),
			}
			if err := u.reservationRepo.Upsert(ctx, reservation, tx); err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Reserve", "upsert", err)
				return err
			}

			committed = *reservation
			return nil
		})
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	publishAvailability(ctx, u.productRepo, u.reservationRepo, u.broker, u.clk, req.ProductID)

	slog.InfoContext(ctx, "[reservationUsecase] Reserve", "reservation", committed.ID,
		"product_id", committed.ProductID, "quantity", committed.Quantity, "expires_at", committed.ExpiresAt)
	return committed, nil
}

// Release shrinks or removes a session's hold. The ledger is never touched;
// releasing only frees capacity for other sessions.
func (u *reservationUsecase) Release(ctx context.Context, req domain.ReleaseRequest) (domain.ReleaseResponse, error) {
	if req.Quantity != nil && *req.Quantity <= 0 {
		return domain.ReleaseResponse{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}

	var result domain.ReleaseResponse
	err := withRetry(ctx, func() error {
		return u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			now := u.clk.Now()

			if _, err := u.productRepo.LockForUpdate(ctx, req.ProductID, tx); err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Release", "lockForUpdate", err)
				return err
			}

			existing, err := u.reservationRepo.FindLive(ctx, req.ProductID, req.SessionID, now)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Release", "findLive", err)
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: no live reservation", domain.ErrNotFound)
			}

			if req.Quantity == nil || *req.Quantity >= existing.Quantity {
				if err := u.reservationRepo.Delete(ctx, existing.ID, tx); err != nil {
					slog.ErrorContext(ctx, "[reservationUsecase] Release", "delete", err)
					return err
				}
				result = domain.ReleaseResponse{Released: existing.Quantity, Remaining: 0}
				return nil
			}

			remaining := existing.Quantity - *req.Quantity
			if err := u.reservationRepo.UpdateQuantity(ctx, existing.ID, remaining, tx); err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Release", "updateQuantity", err)
				return err
			}
			result = domain.ReleaseResponse{Released: *req.Quantity, Remaining: remaining}
			return nil
		})
	})
	if err != nil {
		return domain.ReleaseResponse{}, err
	}

	publishAvailability(ctx, u.productRepo, u.reservationRepo, u.broker, u.clk, req.ProductID)

	slog.InfoContext(ctx, "[reservationUsecase] Release", "product_id", req.ProductID,
		"released", result.Released, "remaining", result.Remaining)
	return result, nil
}

// Consume converts a reservation into a permanent EXIT movement at checkout
// completion. The ledger decrement and the reservation removal commit
// together; if the decrement would go negative the reservation stays intact.
func (u *reservationUsecase) Consume(ctx context.Context, req domain.ConsumeRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}

	err := withRetry(ctx, func() error {
		return u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			now := u.clk.Now()

			product, err := u.productRepo.LockForUpdate(ctx, req.ProductID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Consume", "lockForUpdate", err)
				return err
			}

			existing, err := u.reservationRepo.FindLive(ctx, req.ProductID, req.SessionID, now)
			if err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Consume", "findLive", err)
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: no live reservation", domain.ErrNotFound)
			}

			newStock := product.StockQuantity - req.Quantity
			if newStock < 0 {
				slog.ErrorContext(ctx, "[reservationUsecase] Consume", "insufficientStock", product.StockQuantity,
					"product_id", req.ProductID, "requested", req.Quantity)
				return domain.NewInsufficientStockError(req.ProductID, product.StockQuantity)
			}

			movement := &domain.StockMovement{
				ProductID:     req.ProductID,
				Type:          domain.MovementTypeExit,
				Quantity:      -req.Quantity,
				PreviousStock: product.StockQuantity,
				NewStock:      newStock,
				Reference:     req.Reference,
			}
			if err := u.movementRepo.Create(ctx, movement, tx); err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Consume", "createMovement", err)
				return err
			}

			if err := u.productRepo.UpdateStockQuantity(ctx, req.ProductID, newStock, tx); err != nil {
				slog.ErrorContext(ctx, "[reservationUsecase] Consume", "updateStockQuantity", err)
				return err
			}

			if req.Quantity >= existing.Quantity {
				if err := u.reservationRepo.Delete(ctx, existing.ID, tx); err != nil {
					slog.ErrorContext(ctx, "[reservationUsecase] Consume", "delete", err)
					return err
				}
			} else {
				if err := u.reservationRepo.UpdateQuantity(ctx, existing.ID, existing.Quantity-req.Quantity, tx); err != nil {
					slog.ErrorContext(ctx, "[reservationUsecase] Consume", "updateQuantity", err)
					return err
				}
			}

			product.StockQuantity = newStock
			if product.LowOnStock() {
				slog.WarnContext(ctx, "[reservationUsecase] Consume", "lowStock", product.StockQuantity,
					"product_id", product.ID, "threshold", product.LowStockThreshold)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	publishAvailability(ctx, u.productRepo, u.reservationRepo, u.broker, u.clk, req.ProductID)

	slog.InfoContext(ctx, "[reservationUsecase] Consume", "product_id", req.ProductID,
		"session_id", req.SessionID, "quantity", req.Quantity)
	return nil
}

// SweepExpired bulk-deletes lapsed rows. Purely housekeeping: liveness is a
// read-time predicate everywhere, so availability is correct either way.
func (u *reservationUsecase) SweepExpired(ctx context.Context) (int64, error) {
	count, err := u.reservationRepo.DeleteExpired(ctx, u.clk.Now())
	if err != nil {
		slog.ErrorContext(ctx, "[reservationUsecase] SweepExpired", "deleteExpired", err)
		return 0, err
	}

	if count > 0 {
		slog.InfoContext(ctx, "[reservationUsecase] SweepExpired", "count", count)
	}
	return count, nil
}

func (u *reservationUsecase) GetAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationUsecase] GetAvailability", "getProduct", err)
		return domain.Availability{}, err
	}

	now := u.clk.Now()
	reserved, err := u.reservationRepo.SumLiveQuantity(ctx, productID, "", now)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationUsecase] GetAvailability", "sumLiveQuantity", err)
		return domain.Availability{}, err
	}

	count, err := u.reservationRepo.CountLive(ctx, productID, now)
	if err != nil {
		slog.ErrorContext(ctx, "[reservationUsecase] GetAvailability", "countLive", err)
		return domain.Availability{}, err
	}

	// Display-only clamp; granted reservations can never legitimately exceed
	// the stock, but a manual adjustment may undercut them.
	available := product.StockQuantity - reserved
	if available < 0 {
		available = 0
	}

	return domain.Availability{
		ProductID:          productID,
		TotalStock:         product.StockQuantity,
		Reserved:           reserved,
		Available:          available,
		ActiveReservations: count,
	}, nil
}

func (u *reservationUsecase) GetSweepStats(ctx context.Context) (domain.SweepStats, error) {
	stats, err := u.reservationRepo.CountByExpiry(ctx, u.clk.Now())
	if err != nil {
		slog.ErrorContext(ctx, "[reservationUsecase] GetSweepStats", "countByExpiry", err)
		return domain.SweepStats{}, err
	}

	return stats, nil
}

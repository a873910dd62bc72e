package usecase

import (
	"context"
	"database/sql"
	"log/slog"
	"reservation-service/app/domain"
	"reservation-service/config"
	"reservation-service/pkg/clock"
)

type stockLedgerUsecase struct {
	productRepo     domain.ProductRepository
	movementRepo    domain.MovementRepository
	reservationRepo domain.ReservationRepository
	broker          domain.BrokerPublisher
	clk             clock.Clock
	cfg             *config.Config
}

func NewStockLedgerUsecase(
	productRepo domain.ProductRepository,
	movementRepo domain.MovementRepository,
	reservationRepo domain.ReservationRepository,
	broker domain.BrokerPublisher,
	clk clock.Clock,
	cfg *config.Config) domain.StockLedgerService {
	return &stockLedgerUsecase{productRepo, movementRepo, reservationRepo, broker, clk, cfg}
}

func (u *stockLedgerUsecase) GetStock(ctx context.Context, productID string) (domain.Product, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[stockLedgerUsecase] GetStock", "getProduct", err)
		return domain.Product{}, err
	}

	return product, nil
}

// ApplyMovement updates the stock counter and appends the movement row as one
// atomic unit under the product row lock. Both succeed or both roll back.
func (u *stockLedgerUsecase) ApplyMovement(ctx context.Context, req domain.ApplyMovementRequest) (domain.StockMovement, error) {
	var movement domain.StockMovement

	err := withRetry(ctx, func() error {
		return u.productRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			product, err := u.productRepo.LockForUpdate(ctx, req.ProductID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[stockLedgerUsecase] ApplyMovement", "lockForUpdate", err)
				return err
			}

			newStock := product.StockQuantity + req.Quantity
			if newStock < 0 {
				slog.ErrorContext(ctx, "[stockLedgerUsecase] ApplyMovement", "insufficientStock", product.StockQuantity)
				return domain.NewInsufficientStockError(req.ProductID, product.StockQuantity)
			}

			movement = domain.StockMovement{
				ProductID:     req.ProductID,
				Type:          req.Type,
				Quantity:      req.Quantity,
				PreviousStock: product.StockQuantity,
				NewStock:      newStock,
				Reason:        req.Reason,
				Reference:     req.Reference,
				Actor:         req.Actor,
			}
			if err := u.movementRepo.Create(ctx, &movement, tx); err != nil {
				slog.ErrorContext(ctx, "[stockLedgerUsecase] ApplyMovement", "createMovement", err)
				return err
			}

			if err := u.productRepo.UpdateStockQuantity(ctx, req.ProductID, newStock, tx); err != nil {
				slog.ErrorContext(ctx, "[stockLedgerUsecase] ApplyMovement", "updateStockQuantity", err)
				return err
			}

			product.StockQuantity = newStock
			if product.LowOnStock() {
				slog.WarnContext(ctx, "[stockLedgerUsecase] ApplyMovement", "lowStock", product.StockQuantity,
					"product_id", product.ID, "threshold", product.LowStockThreshold)
			}
			return nil
		})
	})
	if err != nil {
		return domain.StockMovement{}, err
	}

	publishAvailability(ctx, u.productRepo, u.reservationRepo, u.broker, u.clk, req.ProductID)

	slog.InfoContext(ctx, "[stockLedgerUsecase] ApplyMovement", "movement", movement.ID,
		"product_id", movement.ProductID, "new_stock", movement.NewStock)
	return movement, nil
}

func (u *stockLedgerUsecase) GetMovements(ctx context.Context, param domain.ListMovementsRequest) ([]domain.StockMovement, error) {
	movements, err := u.movementRepo.GetList(ctx, param)
	if err != nil {
		slog.ErrorContext(ctx, "[stockLedgerUsecase] GetMovements", "getList", err)
		return nil, err
	}

	return movements, nil
}

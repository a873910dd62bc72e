package usecase

import (
	"context"
	"log/slog"
	"reservation-service/app/domain"
	"reservation-service/pkg/clock"
)

// publishAvailability reports the post-commit availability to the broker.
// Best effort: a failed publish never fails the committed operation.
func publishAvailability(
	ctx context.Context,
	productRepo domain.ProductRepository,
	reservationRepo domain.ReservationRepository,
	broker domain.BrokerPublisher,
	clk clock.Clock,
	productID string) {

	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		slog.WarnContext(ctx, "[publishAvailability] getProduct", "error", err)
		return
	}

	reserved, err := reservationRepo.SumLiveQuantity(ctx, productID, "", clk.Now())
	if err != nil {
		slog.WarnContext(ctx, "[publishAvailability] sumLiveQuantity", "error", err)
		return
	}

	available := product.StockQuantity - reserved
	if available < 0 {
		available = 0
	}

	if err := broker.PublishStockAvailable(ctx, domain.StockMessage{
		ProductID: productID,
		Available: available,
	}); err != nil {
		slog.WarnContext(ctx, "[publishAvailability] publishStockAvailable", "error", err)
	}
}

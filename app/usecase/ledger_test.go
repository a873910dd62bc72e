package usecase

import (
	"context"
	"reservation-service/app/domain"
	"reservation-service/config"
	"reservation-service/pkg/clock"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerEnv(products ...domain.Product) (domain.StockLedgerService, *fakeProductRepo, *fakeMovementRepo) {
	productRepo := newFakeProductRepo(products...)
	movementRepo := newFakeMovementRepo()
	cfg := &config.Config{
		Reservation: config.ReservationConfig{WindowMinutes: 30, SweepIntervalSeconds: 60},
	}
	clk := clock.NewManual(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewStockLedgerUsecase(productRepo, movementRepo, newFakeReservationRepo(), &fakeBroker{}, clk, cfg)
	return svc, productRepo, movementRepo
}

func TestApplyMovement_EntryIncreasesStock(t *testing.T) {
	svc, productRepo, movementRepo := newLedgerEnv(watch("w1", 5))
	ctx := context.Background()

	movement, err := svc.ApplyMovement(ctx, domain.ApplyMovementRequest{
		ProductID: "w1",
		Type:      domain.MovementTypeEntry,
		Quantity:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), movement.PreviousStock)
	assert.Equal(t, int64(8), movement.NewStock)
	assert.Equal(t, movement.PreviousStock+movement.Quantity, movement.NewStock)

	product, err := productRepo.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), product.StockQuantity)

	movements, err := movementRepo.GetList(ctx, domain.ListMovementsRequest{ProductID: "w1"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
}

func TestApplyMovement_RejectsNegativeResult(t *testing.T) {
	svc, productRepo, movementRepo := newLedgerEnv(watch("w1", 5))
	ctx := context.Background()

	_, err := svc.ApplyMovement(ctx, domain.ApplyMovementRequest{
		ProductID: "w1",
		Type:      domain.MovementTypeExit,
		Quantity:  -8,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Counter and log both untouched.
	product, err := productRepo.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), product.StockQuantity)

	movements, err := movementRepo.GetList(ctx, domain.ListMovementsRequest{ProductID: "w1"})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestApplyMovement_UnknownProduct(t *testing.T) {
	svc, _, _ := newLedgerEnv()

	_, err := svc.ApplyMovement(context.Background(), domain.ApplyMovementRequest{
		ProductID: "ghost",
		Type:      domain.MovementTypeEntry,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStock(t *testing.T) {
	svc, _, _ := newLedgerEnv(watch("w1", 7))

	product, err := svc.GetStock(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.StockQuantity)

	_, err = svc.GetStock(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetMovements_Filters(t *testing.T) {
	svc, _, _ := newLedgerEnv(watch("w1", 5), watch("w2", 5))
	ctx := context.Background()

	_, err := svc.ApplyMovement(ctx, domain.ApplyMovementRequest{ProductID: "w1", Type: domain.MovementTypeEntry, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.ApplyMovement(ctx, domain.ApplyMovementRequest{ProductID: "w2", Type: domain.MovementTypeAdjustment, Quantity: 1})
	require.NoError(t, err)

	movements, err := svc.GetMovements(ctx, domain.ListMovementsRequest{ProductID: "w1"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementTypeEntry, movements[0].Type)

	movements, err = svc.GetMovements(ctx, domain.ListMovementsRequest{Type: "ADJUSTMENT"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "w2", movements[0].ProductID)
}

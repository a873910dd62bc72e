package domain

import (
	"context"
	"database/sql"
	"time"
)

type MovementType string

const (
	MovementTypeEntry      MovementType = "ENTRY"
	MovementTypeExit       MovementType = "EXIT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeReturn     MovementType = "RETURN"
)

// StockMovement is an append-only audit record of a change to a product's
// stock quantity. NewStock = PreviousStock + Quantity, never negative.
type StockMovement struct {
	ID            int64        `json:"id"`
	ProductID     string       `json:"product_id"`
	Type          MovementType `json:"type"`
	Quantity      int64        `json:"quantity"`
	PreviousStock int64        `json:"previous_stock"`
	NewStock      int64        `json:"new_stock"`
	Reason        *string      `json:"reason,omitempty"`
	Reference     *string      `json:"reference,omitempty"`
	Actor         *string      `json:"actor,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type ApplyMovementRequest struct {
	ProductID string       `json:"product_id" validate:"required"`
	Type      MovementType `json:"type" validate:"required,oneof=ENTRY EXIT ADJUSTMENT RETURN"`
	Quantity  int64        `json:"quantity" validate:"required"`
	Reason    *string      `json:"reason"`
	Reference *string      `json:"reference"`
	Actor     *string      `json:"actor"`
}

type ListMovementsRequest struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	Limit     int64  `query:"limit"`
}

type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement, tx *sql.Tx) error
	GetList(ctx context.Context, param ListMovementsRequest) ([]StockMovement, error)
}

// StockLedgerService owns the authoritative stock counter. ApplyMovement
// updates the counter and appends the movement row as one atomic unit.
type StockLedgerService interface {
	GetStock(ctx context.Context, productID string) (Product, error)
	ApplyMovement(ctx context.Context, req ApplyMovementRequest) (StockMovement, error)
	GetMovements(ctx context.Context, param ListMovementsRequest) ([]StockMovement, error)
}

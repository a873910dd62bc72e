package domain

import (
	"context"
	"database/sql"
	"time"
)

// Product is the stock record of a sellable unit. The quantity here is the
// authoritative physical count; reservations live on top of it and never
// mutate it. The only writer is the ledger (movements and checkout consume).
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	StockQuantity     int64     `json:"stock_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LowOnStock reports whether the physical count has dropped to or below the
// configured threshold. Informational only.
func (p Product) LowOnStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

type ProductRepository interface {
	GetByID(ctx context.Context, productID string) (Product, error)
	LockForUpdate(ctx context.Context, productID string, tx *sql.Tx) (Product, error)
	UpdateStockQuantity(ctx context.Context, productID string, quantity int64, tx *sql.Tx) error

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reservation-service/app/domain"
)

type productRepository struct {
	conn *sql.DB
}

func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{db}
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (domain.Product, error) {
	query := `SELECT id, name, stock_quantity, low_stock_threshold, created_at, updated_at
	FROM products WHERE id = $1`

	var product domain.Product
	err := r.conn.QueryRowContext(ctx, query, productID).Scan(&product.ID, &product.Name,
		&product.StockQuantity, &product.LowStockThreshold, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return product, domain.ErrNotFound
		}
		return product, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return product, nil
}

func (r *productRepository) LockForUpdate(ctx context.Context, productID string, tx *sql.Tx) (domain.Product, error) {
	query := `SELECT id, name, stock_quantity, low_stock_threshold, created_at, updated_at
	FROM products WHERE id = $1 FOR UPDATE`

	var product domain.Product
	err := tx.QueryRowContext(ctx, query, productID).Scan(&product.ID, &product.Name,
		&product.StockQuantity, &product.LowStockThreshold, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] LockForUpdate", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return product, domain.ErrNotFound
		}
		return product, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return product, nil
}

func (r *productRepository) UpdateStockQuantity(ctx context.Context, productID string, quantity int64, tx *sql.Tx) error {
	query := `UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] UpdateStockQuantity", "execContext", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *productRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] WithTransaction", "beginTx", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.ErrorContext(ctx, "[productRepository] WithTransaction", "rollback", rollbackErr)
			return err
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.ErrorContext(ctx, "[productRepository] WithTransaction", "commit", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

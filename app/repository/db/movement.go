package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reservation-service/app/domain"
)

const movementListMaxLimit = 100

type movementRepository struct {
	conn *sql.DB
}

func NewMovementRepository(db *sql.DB) domain.MovementRepository {
	return &movementRepository{db}
}

func (r *movementRepository) Create(ctx context.Context, movement *domain.StockMovement, tx *sql.Tx) error {
	query := `INSERT INTO stock_movements (product_id, type, quantity, previous_stock, new_stock, reason, reference, actor)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at`

	err := tx.QueryRowContext(ctx, query, movement.ProductID, movement.Type, movement.Quantity,
		movement.PreviousStock, movement.NewStock, movement.Reason, movement.Reference, movement.Actor).
		Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[movementRepository] Create", "queryRowContext", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *movementRepository) GetList(ctx context.Context, param domain.ListMovementsRequest) ([]domain.StockMovement, error) {
	query := `SELECT id, product_id, type, quantity, previous_stock, new_stock, reason, reference, actor, created_at
	FROM stock_movements WHERE 1=1`

	args := []any{}
	placeholder := 1

	if param.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", placeholder)
		args = append(args, param.ProductID)
		placeholder++
	}
	if param.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", placeholder)
		args = append(args, param.Type)
		placeholder++
	}

	limit := param.Limit
	if limit <= 0 || limit > movementListMaxLimit {
		limit = movementListMaxLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[movementRepository] GetList", "queryContext", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var movement domain.StockMovement
		if err := rows.Scan(&movement.ID, &movement.ProductID, &movement.Type, &movement.Quantity,
			&movement.PreviousStock, &movement.NewStock, &movement.Reason, &movement.Reference,
			&movement.Actor, &movement.CreatedAt); err != nil {
			slog.ErrorContext(ctx, "[movementRepository] GetList", "scan", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		movements = append(movements, movement)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[movementRepository] GetList", "rowError", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return movements, nil
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInternal          = errors.New("internal server error")
)

// InsufficientStockError carries the quantity the caller could still get,
// computed inside the same transaction that rejected the request.
type InsufficientStockError struct {
	ProductID string
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available", e.ProductID, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func NewInsufficientStockError(productID string, available int64) error {
	if available < 0 {
		available = 0
	}
	return &InsufficientStockError{ProductID: productID, Available: available}
}

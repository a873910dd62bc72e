package response

import (
	"errors"
	"reservation-service/app/domain"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Available accompanies insufficient-stock errors so the caller can offer
	// a reduced quantity.
	Available *int64 `json:"available,omitempty"`
}

func Success(data any) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

func Error(err error) *Response {
	return &Response{
		Success: false,
		Error:   err.Error(),
	}
}

func FromError(err error) (int, *Response) {
	var insufficientErr *domain.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		resp := Error(err)
		resp.Available = &insufficientErr.Available
		return fiber.StatusConflict, resp
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, Error(err)
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, Error(err)
	case errors.Is(err, domain.ErrBadRequest):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, Error(err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, Error(domain.ErrStoreUnavailable)
	default:
		return fiber.StatusInternalServerError, Error(domain.ErrInternal)
	}
}

package response

import (
	"fmt"
	"reservation-service/app/domain"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError_InsufficientStockCarriesAvailable(t *testing.T) {
	status, resp := FromError(domain.NewInsufficientStockError("w1", 3))

	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, resp.Available)
	assert.Equal(t, int64(3), *resp.Available)
	assert.False(t, resp.Success)
}

func TestFromError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w: no live reservation", domain.ErrNotFound), fiber.StatusNotFound},
		{domain.ErrValidation, fiber.StatusBadRequest},
		{domain.ErrInvalidRequest, fiber.StatusBadRequest},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable},
		{fmt.Errorf("something else"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, resp := FromError(tt.err)
		assert.Equal(t, tt.status, status, "error: %v", tt.err)
		assert.False(t, resp.Success)
	}
}

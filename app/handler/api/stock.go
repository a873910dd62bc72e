package handler

import (
	"log/slog"
	"reservation-service/app/domain"
	"reservation-service/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	ledger    domain.StockLedgerService
	validator *validator.Validate
}

func NewStockHandler(ledger domain.StockLedgerService, validator *validator.Validate) *StockHandler {
	return &StockHandler{
		ledger:    ledger,
		validator: validator,
	}
}

func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if productID == "" {
		slog.ErrorContext(c.Context(), "[stockHandler] GetStock", "productID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	product, err := h.ledger.GetStock(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[stockHandler] GetStock", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(product))
}

func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	var req domain.ApplyMovementRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[stockHandler] ApplyMovement", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[stockHandler] ApplyMovement", "validator", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	movement, err := h.ledger.ApplyMovement(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[stockHandler] ApplyMovement", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(movement))
}

func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	param := domain.ListMovementsRequest{}
	if err := c.QueryParser(&param); err != nil {
		slog.WarnContext(c.Context(), "[stockHandler] GetMovements", "queryParser", err)
	}

	movements, err := h.ledger.GetMovements(c.Context(), param)
	if err != nil {
		slog.ErrorContext(c.Context(), "[stockHandler] GetMovements", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(movements))
}

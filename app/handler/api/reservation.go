package handler

import (
	"log/slog"
	"reservation-service/app/domain"
	"reservation-service/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ReservationHandler struct {
	usecase   domain.ReservationService
	validator *validator.Validate
}

func NewReservationHandler(usecase domain.ReservationService, validator *validator.Validate) *ReservationHandler {
	return &ReservationHandler{
		usecase:   usecase,
		validator: validator,
	}
}

func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var req domain.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Reserve", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Reserve", "validator", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	reservation, err := h.usecase.Reserve(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Reserve", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(reservation))
}

func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var req domain.ReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Release", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Release", "validator", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	released, err := h.usecase.Release(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Release", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(released))
}

func (h *ReservationHandler) GetAvailability(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if productID == "" {
		slog.ErrorContext(c.Context(), "[reservationHandler] GetAvailability", "productID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	availability, err := h.usecase.GetAvailability(c.Context(), productID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] GetAvailability", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(availability))
}

func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var req domain.ConsumeRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Consume", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Consume", "validator", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	if err := h.usecase.Consume(c.Context(), req); err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] Consume", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}

func (h *ReservationHandler) SweepExpired(c *fiber.Ctx) error {
	count, err := h.usecase.SweepExpired(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] SweepExpired", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(fiber.Map{"count": count}))
}

func (h *ReservationHandler) GetSweepStats(c *fiber.Ctx) error {
	stats, err := h.usecase.GetSweepStats(c.Context())
	if err != nil {
		slog.ErrorContext(c.Context(), "[reservationHandler] GetSweepStats", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(stats))
}

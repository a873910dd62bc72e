package handler

import (
	"reservation-service/app/middleware"
	"reservation-service/config"

	"github.com/gofiber/fiber/v2"
)

func SetupRouter(app *fiber.App, reservationHandler *ReservationHandler, stockHandler *StockHandler, cfg *config.Config) {

	// Shopper-facing endpoints. The session id is an untrusted correlation
	// key supplied by the client, so no auth here.
	api := app.Group("/reservation-service")

	api.Post("/reservations/reserve", reservationHandler.Reserve)
	api.Post("/reservations/release", reservationHandler.Release)
	api.Get("/products/:product_id/availability", reservationHandler.GetAvailability)

	admin := app.Group("/reservation-service/admin").Use(middleware.Auth(cfg.Jwt.SecretKey))
	admin.Get("/products/:product_id/stock", stockHandler.GetStock)
	admin.Post("/movements", stockHandler.ApplyMovement)
	admin.Get("/movements", stockHandler.GetMovements)

	internal := app.Group("/internal/reservation-service").Use(middleware.AuthInternal(cfg))
	internal.Post("/reservations/consume", reservationHandler.Consume)
	internal.Post("/reservations/sweep", reservationHandler.SweepExpired)
	internal.Get("/reservations/stats", reservationHandler.GetSweepStats)
}

package routers

import (
	"labbridge-service/internal/app/delivery/http/middlewares"
	"labbridge-service/internal/app/services/core/orders"

	"github.com/go-chi/chi/v5"
)

func attachOrderRoutes(router chi.Router, middlewares *middlewares.Middlewares, orderController *orders.OrderController) {
	router.With(middlewares.APIKeyAuth).Post("/", orderController.CreateOrder)
	router.With(middlewares.APIKeyAuth).Get("/{orderID}", orderController.GetOrderByID)
	router.With(middlewares.APIKeyAuth).Post("/{orderID}/confirm", orderController.ConfirmPreview)
	router.With(middlewares.APIKeyAuth).Post("/{orderID}/reject", orderController.RejectPreview)
}

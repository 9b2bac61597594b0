package wire

import (
	"cargo-delivery/internal/adaptor"
	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/pkg/middleware"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShipment(
	r chi.Router,
	shipmentHandler *adaptor.ShipmentHandler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/shipments", func(r chi.Router) {
		r.Use(middleware.Auth(tokens, repo.User, log))

		// Customer routes
		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/", shipmentHandler.Create)
		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/quote", shipmentHandler.Quote)
		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Get("/", shipmentHandler.List)

		// Driver routes. "/available" must register before "/{id}" so chi
		// does not swallow it as an id.
		r.With(middleware.RequireRole(log, entity.RoleDriver)).Get("/available", shipmentHandler.ListAvailable)
		r.With(middleware.RequireRole(log, entity.RoleDriver)).Post("/{id}/accept", shipmentHandler.Accept)

		// Shared routes; the service layer enforces per-shipment access.
		r.Get("/{id}", shipmentHandler.GetByID)
		r.Put("/{id}/status", shipmentHandler.UpdateStatus)
	})

	r.With(middleware.Auth(tokens, repo.User, log)).Get("/api/payment-methods", shipmentHandler.PaymentMethods)
}

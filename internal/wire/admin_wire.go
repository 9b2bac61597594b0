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

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(tokens, repo.User, log))
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		r.Get("/stats", adminHandler.Stats)
		r.Get("/shipments", adminHandler.ListShipments)
		r.Get("/users", adminHandler.ListUsers)
		r.Put("/drivers/{id}/approve", adminHandler.ApproveDriver)
	})
}

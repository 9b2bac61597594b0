package wire

import (
	"cargo-delivery/internal/adaptor"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/pkg/middleware"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Auth(tokens, repo.User, log))

		r.Get("/profile", userHandler.Profile)
		r.Put("/profile", userHandler.UpdateProfile)
		r.Put("/password", userHandler.ChangePassword)
	})
}

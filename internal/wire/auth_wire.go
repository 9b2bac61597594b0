package wire

import (
	"cargo-delivery/internal/adaptor"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/pkg/middleware"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.Auth(tokens, repo.User, log)).Get("/api/auth/me", authHandler.Me)
}

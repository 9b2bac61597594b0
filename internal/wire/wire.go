package wire

import (
	"net/http"

	"cargo-delivery/internal/adaptor"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/internal/usecase"
	"cargo-delivery/pkg/cache"
	"cargo-delivery/pkg/middleware"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds the service graph and the HTTP router on top of it.
func Wiring(repo *repository.Repository, config *utils.Config, tokens *utils.TokenManager, cache cache.Cache, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, tokens, cache, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, tokens, cache, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	tokens *utils.TokenManager,
	cache cache.Cache,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, repo, tokens, logger)
	wireUser(r, handler.User, repo, tokens, logger)
	wireShipment(r, handler.Shipment, repo, tokens, logger)
	wireAdmin(r, handler.Admin, repo, tokens, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := cache.Ping(r.Context()); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("cache unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

package usecase

import (
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/pkg/cache"
	"cargo-delivery/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Shipment ShipmentService
	Admin    AdminService
}

func NewService(repo *repository.Repository, config *utils.Config, tokens *utils.TokenManager, cache cache.Cache, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, tokens, log),
		User:     NewUserService(repo.User, log),
		Shipment: NewShipmentService(repo, cache, log),
		Admin:    NewAdminService(repo, cache, log),
	}
}

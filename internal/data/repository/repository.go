package repository

import (
	"errors"

	"cargo-delivery/pkg/database"

	"go.uber.org/zap"
)

// ErrDuplicateKey marks a unique-constraint violation so services can
// turn it into a domain conflict instead of a generic failure.
var ErrDuplicateKey = errors.New("duplicate key")

type Repository struct {
	User     UserRepository
	Shipment ShipmentRepository
	Tracking TrackingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Shipment: NewShipmentRepository(db, log),
		Tracking: NewTrackingRepository(db, log),
	}
}

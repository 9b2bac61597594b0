package repository

import (
	"context"
	"fmt"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackingRepository is append-only: entries are never updated or
// removed once written.
type TrackingRepository interface {
	Create(ctx context.Context, entry *entity.TrackingEntry) error
	FindByShipmentID(ctx context.Context, shipmentID uuid.UUID) ([]*entity.TrackingEntry, error)
}

type trackingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTrackingRepository(db database.PgxIface, log *zap.Logger) TrackingRepository {
	return &trackingRepository{
		db:  db,
		log: log.With(zap.String("repository", "tracking")),
	}
}

func (tr *trackingRepository) Create(ctx context.Context, entry *entity.TrackingEntry) error {
	query := `
		INSERT INTO tracking_entries (id, shipment_id, status, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tr.db.Exec(ctx, query,
		entry.ID,
		entry.ShipmentID,
		entry.Status,
		entry.Note,
		entry.CreatedAt,
	)

	if err != nil {
		tr.log.Error("Failed to create tracking entry",
			zap.Error(err),
			zap.String("shipment_id", entry.ShipmentID.String()),
			zap.String("status", string(entry.Status)),
		)
		return fmt.Errorf("create tracking entry for shipment %s: %w", entry.ShipmentID.String(), err)
	}

	return nil
}

// FindByShipmentID returns the history oldest first.
func (tr *trackingRepository) FindByShipmentID(ctx context.Context, shipmentID uuid.UUID) ([]*entity.TrackingEntry, error) {
	query := `
		SELECT id, shipment_id, status, note, created_at
		FROM tracking_entries
		WHERE shipment_id = $1
		ORDER BY created_at ASC
	`

	rows, err := tr.db.Query(ctx, query, shipmentID)
	if err != nil {
		tr.log.Error("Failed to get tracking history",
			zap.Error(err),
			zap.String("shipment_id", shipmentID.String()),
		)
		return nil, fmt.Errorf("find tracking entries for shipment %s: %w", shipmentID.String(), err)
	}
	defer rows.Close()

	var entries []*entity.TrackingEntry
	for rows.Next() {
		var entry entity.TrackingEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ShipmentID,
			&entry.Status,
			&entry.Note,
			&entry.CreatedAt,
		)
		if err != nil {
			tr.log.Error("Failed to scan tracking entry row", zap.Error(err))
			return nil, fmt.Errorf("scan tracking entry row: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		tr.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate tracking entry rows: %w", err)
	}

	return entries, nil
}

package entity

import (
	"github.com/google/uuid"
)

// TrackingEntry is one row of a shipment's append-only history. Entries
// are never edited or removed; the latest entry's status always equals
// the owning shipment's current status.
type TrackingEntry struct {
	BaseSimple
	ShipmentID uuid.UUID      `db:"shipment_id"`
	Status     ShipmentStatus `db:"status"`
	Note       *string        `db:"note"`
}

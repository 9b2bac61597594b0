package repository

import (
	"context"
	"fmt"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *entity.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Shipment, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.Shipment, error)
	FindAvailable(ctx context.Context) ([]*entity.Shipment, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Shipment, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.ShipmentStatus]int64, error)
	DeliveredRevenue(ctx context.Context) (float64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Conditional updates. Both report whether a row was changed so the
	// service layer can distinguish a lost race from success; the WHERE
	// clause on the prior state is what serializes concurrent
	// transitions on the same shipment.
	Assign(ctx context.Context, shipmentID, driverID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, shipmentID uuid.UUID, from, to entity.ShipmentStatus) (bool, error)
}

type shipmentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShipmentRepository(db database.PgxIface, log *zap.Logger) ShipmentRepository {
	return &shipmentRepository{
		db:  db,
		log: log.With(zap.String("repository", "shipment")),
	}
}

const shipmentColumns = `id, customer_id, driver_id, pickup_address, delivery_address, package,
	       status, estimated_cost, estimated_delivery_time, payment_method, payment_status,
	       created_at, updated_at`

func (sr *shipmentRepository) scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var shipment entity.Shipment
	err := row.Scan(
		&shipment.ID,
		&shipment.CustomerID,
		&shipment.DriverID,
		&shipment.PickupAddress,
		&shipment.DeliveryAddress,
		&shipment.Package,
		&shipment.Status,
		&shipment.EstimatedCost,
		&shipment.EstimatedDeliveryTime,
		&shipment.PaymentMethod,
		&shipment.PaymentStatus,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (sr *shipmentRepository) Create(ctx context.Context, shipment *entity.Shipment) error {
	query := `
		INSERT INTO shipments (id, customer_id, driver_id, pickup_address, delivery_address, package,
		                       status, estimated_cost, estimated_delivery_time, payment_method,
		                       payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := sr.db.Exec(ctx, query,
		shipment.ID,
		shipment.CustomerID,
		shipment.DriverID,
		shipment.PickupAddress,
		shipment.DeliveryAddress,
		shipment.Package,
		shipment.Status,
		shipment.EstimatedCost,
		shipment.EstimatedDeliveryTime,
		shipment.PaymentMethod,
		shipment.PaymentStatus,
		shipment.CreatedAt,
		shipment.UpdatedAt,
	)

	if err != nil {
		sr.log.Error("Failed to create shipment",
			zap.Error(err),
			zap.String("customer_id", shipment.CustomerID.String()),
		)
		return fmt.Errorf("create shipment %s: %w", shipment.ID.String(), err)
	}

	return nil
}

func (sr *shipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`

	shipment, err := sr.scanShipment(sr.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		sr.log.Error("Failed to find shipment by ID",
			zap.Error(err),
			zap.String("shipment_id", id.String()),
		)
		return nil, fmt.Errorf("find shipment by ID %s: %w", id.String(), err)
	}

	return shipment, nil
}

// FindByCustomerID returns the customer's shipments in insertion order.
func (sr *shipmentRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`

	rows, err := sr.db.Query(ctx, query, customerID)
	if err != nil {
		sr.log.Error("Failed to get customer shipments",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find shipments for customer %s: %w", customerID.String(), err)
	}
	defer rows.Close()

	return sr.collectShipments(rows)
}

// FindAvailable returns unassigned shipments still in the created state,
// oldest first. Polled by drivers looking for jobs.
func (sr *shipmentRepository) FindAvailable(ctx context.Context) ([]*entity.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE status = 'created' AND driver_id IS NULL
		ORDER BY created_at ASC
	`

	rows, err := sr.db.Query(ctx, query)
	if err != nil {
		sr.log.Error("Failed to get available shipments", zap.Error(err))
		return nil, fmt.Errorf("find available shipments: %w", err)
	}
	defer rows.Close()

	return sr.collectShipments(rows)
}

func (sr *shipmentRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := sr.db.Query(ctx, query, limit, offset)
	if err != nil {
		sr.log.Error("Failed to get all shipments",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all shipments limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	return sr.collectShipments(rows)
}

func (sr *shipmentRepository) collectShipments(rows pgx.Rows) ([]*entity.Shipment, error) {
	var shipments []*entity.Shipment
	for rows.Next() {
		shipment, err := sr.scanShipment(rows)
		if err != nil {
			sr.log.Error("Failed to scan shipment row", zap.Error(err))
			return nil, fmt.Errorf("scan shipment row: %w", err)
		}
		shipments = append(shipments, shipment)
	}

	if err := rows.Err(); err != nil {
		sr.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate shipment rows: %w", err)
	}

	return shipments, nil
}

func (sr *shipmentRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM shipments`

	var count int64
	err := sr.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		sr.log.Error("Failed to count shipments", zap.Error(err))
		return 0, fmt.Errorf("count all shipments: %w", err)
	}

	return count, nil
}

func (sr *shipmentRepository) CountByStatus(ctx context.Context) (map[entity.ShipmentStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM shipments GROUP BY status`

	rows, err := sr.db.Query(ctx, query)
	if err != nil {
		sr.log.Error("Failed to count shipments by status", zap.Error(err))
		return nil, fmt.Errorf("count shipments by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.ShipmentStatus]int64)
	for rows.Next() {
		var status entity.ShipmentStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count row: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status count rows: %w", err)
	}

	return counts, nil
}

func (sr *shipmentRepository) DeliveredRevenue(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(estimated_cost), 0) FROM shipments WHERE status = 'delivered'`

	var revenue float64
	err := sr.db.QueryRow(ctx, query).Scan(&revenue)
	if err != nil {
		sr.log.Error("Failed to sum delivered revenue", zap.Error(err))
		return 0, fmt.Errorf("sum delivered revenue: %w", err)
	}

	return revenue, nil
}

func (sr *shipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shipments WHERE id = $1`

	result, err := sr.db.Exec(ctx, query, id)
	if err != nil {
		sr.log.Error("Failed to delete shipment",
			zap.Error(err),
			zap.String("shipment_id", id.String()),
		)
		return fmt.Errorf("delete shipment %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("shipment %s not found", id.String())
	}

	return nil
}

// Assign sets the driver and moves the shipment to assigned, but only if
// it is still unclaimed. A second driver racing for the same shipment
// gets rowsAffected == 0.
func (sr *shipmentRepository) Assign(ctx context.Context, shipmentID, driverID uuid.UUID) (bool, error) {
	query := `
		UPDATE shipments
		SET driver_id = $2, status = 'assigned', updated_at = NOW()
		WHERE id = $1 AND status = 'created' AND driver_id IS NULL
	`

	result, err := sr.db.Exec(ctx, query, shipmentID, driverID)
	if err != nil {
		sr.log.Error("Failed to assign driver",
			zap.Error(err),
			zap.String("shipment_id", shipmentID.String()),
			zap.String("driver_id", driverID.String()),
		)
		return false, fmt.Errorf("assign driver to shipment %s: %w", shipmentID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateStatus performs a compare-and-swap on the status column.
func (sr *shipmentRepository) UpdateStatus(ctx context.Context, shipmentID uuid.UUID, from, to entity.ShipmentStatus) (bool, error) {
	query := `
		UPDATE shipments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := sr.db.Exec(ctx, query, shipmentID, from, to)
	if err != nil {
		sr.log.Error("Failed to update shipment status",
			zap.Error(err),
			zap.String("shipment_id", shipmentID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update shipment %s status: %w", shipmentID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

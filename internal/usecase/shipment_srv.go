package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/internal/dto/request"
	"cargo-delivery/internal/dto/response"
	"cargo-delivery/pkg/cache"
	"cargo-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status-category filters used by the client's shipment tabs.
const (
	CategoryAll       = "all"
	CategoryActive    = "active"
	CategoryDelivered = "delivered"
	CategoryCancelled = "cancelled"
)

const (
	baseRate   = 10.0
	weightRate = 2.0
	// Placeholder until a real routing estimate exists.
	deliveryTimeWindow = "2-4 hours"

	availableCacheKey = "shipments:available"
	availableCacheTTL = 10 * time.Second
	shipmentKeyPrefix = "shipments:"
	statsKeyPrefix    = "admin:"
)

type ShipmentService interface {
	Create(ctx context.Context, customerID string, req *request.CreateShipmentRequest) (*response.ShipmentResponse, error)
	Quote(req *request.QuoteRequest) (*response.QuoteResponse, error)
	GetByID(ctx context.Context, shipmentID, actorID string, role entity.UserRole) (*response.ShipmentResponse, error)
	ListForCustomer(ctx context.Context, customerID, category string) ([]*response.ShipmentResponse, error)
	ListAvailable(ctx context.Context, driverID string) ([]*response.ShipmentResponse, error)
	Accept(ctx context.Context, shipmentID, driverID string) (*response.ShipmentResponse, error)
	UpdateStatus(ctx context.Context, shipmentID, actorID string, role entity.UserRole, req *request.UpdateStatusRequest) (*response.ShipmentResponse, error)
	PaymentMethods() []*response.PaymentMethodResponse
}

type shipmentService struct {
	repo  *repository.Repository
	cache cache.Cache
	log   *zap.Logger
}

func NewShipmentService(repo *repository.Repository, cache cache.Cache, log *zap.Logger) ShipmentService {
	return &shipmentService{
		repo:  repo,
		cache: cache,
		log:   log.With(zap.String("service", "shipment")),
	}
}

// EstimateCost prices a package: base rate plus a per-kg rate, with a
// surcharge multiplier for fragile handling. Fixed at creation time.
func EstimateCost(pkg request.PackageInput) float64 {
	multiplier := 1.0
	if entity.PackageType(pkg.Type) == entity.PackageTypeFragile {
		multiplier = 1.5
	}
	return math.Round((baseRate + pkg.Weight*weightRate) * multiplier)
}

// FilterByCategory is a pure projection over a shipment list. Active
// means not yet delivered and not cancelled. An unknown category
// behaves like "all".
func FilterByCategory(shipments []*entity.Shipment, category string) []*entity.Shipment {
	if category == "" || category == CategoryAll {
		return shipments
	}

	filtered := make([]*entity.Shipment, 0, len(shipments))
	for _, shipment := range shipments {
		switch category {
		case CategoryActive:
			if !shipment.Status.Terminal() {
				filtered = append(filtered, shipment)
			}
		case CategoryDelivered:
			if shipment.Status == entity.StatusDelivered {
				filtered = append(filtered, shipment)
			}
		case CategoryCancelled:
			if shipment.Status == entity.StatusCancelled {
				filtered = append(filtered, shipment)
			}
		default:
			filtered = append(filtered, shipment)
		}
	}
	return filtered
}

func (s *shipmentService) Create(ctx context.Context, customerID string, req *request.CreateShipmentRequest) (*response.ShipmentResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create shipment validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed customer id", ErrInvalidInput)
	}

	now := time.Now()
	shipment := &entity.Shipment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID:            customerUUID,
		PickupAddress:         toAddress(req.PickupAddress),
		DeliveryAddress:       toAddress(req.DeliveryAddress),
		Package:               toPackage(req.Package),
		Status:                entity.StatusCreated,
		EstimatedCost:         EstimateCost(req.Package),
		EstimatedDeliveryTime: deliveryTimeWindow,
		PaymentMethod:         entity.PaymentMethod(req.PaymentMethod),
		PaymentStatus:         entity.PaymentStatusPending,
	}

	if err := s.repo.Shipment.Create(ctx, shipment); err != nil {
		s.log.Error("Failed to create shipment",
			zap.Error(err),
			zap.String("customer_id", customerID),
		)
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	// The history must never be empty: a shipment is born with its
	// first entry. Roll the record back if the append fails.
	entry, err := s.appendTracking(ctx, shipment.ID, entity.StatusCreated, strPtr("Shipment created successfully"))
	if err != nil {
		if delErr := s.repo.Shipment.Delete(ctx, shipment.ID); delErr != nil {
			s.log.Error("Failed to roll back shipment after tracking failure",
				zap.Error(delErr), zap.String("shipment_id", shipment.ID.String()))
		}
		return nil, fmt.Errorf("append initial tracking entry: %w", err)
	}

	s.invalidateCaches(ctx)

	s.log.Info("Shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("customer_id", customerID),
		zap.Float64("estimated_cost", shipment.EstimatedCost),
	)

	return response.ShipmentToResponse(shipment, []*entity.TrackingEntry{entry}), nil
}

func (s *shipmentService) Quote(req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	return &response.QuoteResponse{
		EstimatedCost:         EstimateCost(req.Package),
		EstimatedDeliveryTime: deliveryTimeWindow,
	}, nil
}

func (s *shipmentService) GetByID(ctx context.Context, shipmentID, actorID string, role entity.UserRole) (*response.ShipmentResponse, error) {
	shipment, actorUUID, err := s.findShipment(ctx, shipmentID, actorID)
	if err != nil {
		return nil, err
	}

	if !canRead(shipment, actorUUID, role) {
		s.log.Warn("Shipment read denied",
			zap.String("shipment_id", shipmentID),
			zap.String("actor_id", actorID),
			zap.String("role", string(role)))
		return nil, ErrForbidden
	}

	history, err := s.repo.Tracking.FindByShipmentID(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("load tracking history: %w", err)
	}

	return response.ShipmentToResponse(shipment, history), nil
}

func (s *shipmentService) ListForCustomer(ctx context.Context, customerID, category string) ([]*response.ShipmentResponse, error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed customer id", ErrInvalidInput)
	}

	shipments, err := s.repo.Shipment.FindByCustomerID(ctx, customerUUID)
	if err != nil {
		return nil, fmt.Errorf("list customer shipments: %w", err)
	}

	return response.ShipmentsToResponse(FilterByCategory(shipments, category)), nil
}

func (s *shipmentService) ListAvailable(ctx context.Context, driverID string) ([]*response.ShipmentResponse, error) {
	if err := s.requireApprovedDriver(ctx, driverID); err != nil {
		return nil, err
	}

	// Drivers poll this endpoint; serve from cache when fresh.
	if data, err := s.cache.Get(ctx, availableCacheKey); err == nil && data != nil {
		var cached []*response.ShipmentResponse
		decodeErr := json.Unmarshal(data, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		s.log.Warn("Failed to decode cached available shipments", zap.Error(decodeErr))
	}

	shipments, err := s.repo.Shipment.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available shipments: %w", err)
	}

	responses := response.ShipmentsToResponse(shipments)

	if err := s.cache.Set(ctx, availableCacheKey, responses, availableCacheTTL); err != nil {
		s.log.Warn("Failed to cache available shipments", zap.Error(err))
	}

	return responses, nil
}

func (s *shipmentService) Accept(ctx context.Context, shipmentID, driverID string) (*response.ShipmentResponse, error) {
	if err := s.requireApprovedDriver(ctx, driverID); err != nil {
		return nil, err
	}

	shipment, driverUUID, err := s.findShipment(ctx, shipmentID, driverID)
	if err != nil {
		return nil, err
	}

	// Conditional update: only one driver can win the shipment.
	ok, err := s.repo.Shipment.Assign(ctx, shipment.ID, driverUUID)
	if err != nil {
		return nil, fmt.Errorf("assign driver: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("shipment is no longer available: %w", ErrInvalidTransition)
	}

	if _, err := s.appendTracking(ctx, shipment.ID, entity.StatusAssigned, strPtr("Driver assigned to shipment")); err != nil {
		return nil, fmt.Errorf("append tracking entry: %w", err)
	}

	s.invalidateCaches(ctx)

	s.log.Info("Shipment accepted by driver",
		zap.String("shipment_id", shipmentID),
		zap.String("driver_id", driverID),
	)

	return s.reloadShipment(ctx, shipment.ID)
}

func (s *shipmentService) UpdateStatus(ctx context.Context, shipmentID, actorID string, role entity.UserRole, req *request.UpdateStatusRequest) (*response.ShipmentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update status validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	shipment, actorUUID, err := s.findShipment(ctx, shipmentID, actorID)
	if err != nil {
		return nil, err
	}

	newStatus := entity.ShipmentStatus(req.Status)

	if !canTransition(shipment, actorUUID, role, newStatus) {
		s.log.Warn("Status update denied",
			zap.String("shipment_id", shipmentID),
			zap.String("actor_id", actorID),
			zap.String("role", string(role)),
			zap.String("new_status", req.Status))
		return nil, ErrForbidden
	}

	if !shipment.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", shipment.Status, newStatus, ErrInvalidTransition)
	}

	// Compare-and-swap on the prior status: a concurrent transition on
	// the same shipment makes this a no-op and the caller must retry
	// against the fresh state.
	ok, err := s.repo.Shipment.UpdateStatus(ctx, shipment.ID, shipment.Status, newStatus)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("shipment status changed concurrently: %w", ErrInvalidTransition)
	}

	note := req.Note
	if note == nil {
		note = strPtr(fmt.Sprintf("Status updated to %s", newStatus))
	}
	if _, err := s.appendTracking(ctx, shipment.ID, newStatus, note); err != nil {
		return nil, fmt.Errorf("append tracking entry: %w", err)
	}

	s.invalidateCaches(ctx)

	s.log.Info("Shipment status updated",
		zap.String("shipment_id", shipmentID),
		zap.String("from", string(shipment.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actor_id", actorID),
	)

	return s.reloadShipment(ctx, shipment.ID)
}

// PaymentMethods lists the supported payment options. Static for now;
// actual charging happens outside this service.
func (s *shipmentService) PaymentMethods() []*response.PaymentMethodResponse {
	return []*response.PaymentMethodResponse{
		{ID: string(entity.PaymentMethodStripe), Name: "Stripe"},
		{ID: string(entity.PaymentMethodPaypal), Name: "PayPal"},
		{ID: string(entity.PaymentMethodCash), Name: "Cash on delivery"},
	}
}

// ==================== HELPER METHODS ====================

func (s *shipmentService) findShipment(ctx context.Context, shipmentID, actorID string) (*entity.Shipment, uuid.UUID, error) {
	id, err := uuid.Parse(shipmentID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: malformed shipment id", ErrInvalidInput)
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	shipment, err := s.repo.Shipment.FindByID(ctx, id)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("find shipment: %w", err)
	}
	if shipment == nil {
		return nil, uuid.Nil, fmt.Errorf("shipment %s: %w", shipmentID, ErrNotFound)
	}

	return shipment, actorUUID, nil
}

func (s *shipmentService) requireApprovedDriver(ctx context.Context, driverID string) error {
	id, err := uuid.Parse(driverID)
	if err != nil {
		return fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	driver, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find driver: %w", err)
	}
	if driver == nil || driver.Role != entity.RoleDriver {
		return ErrForbidden
	}
	if !driver.IsApproved {
		return ErrDriverNotApproved
	}

	return nil
}

func (s *shipmentService) appendTracking(ctx context.Context, shipmentID uuid.UUID, status entity.ShipmentStatus, note *string) (*entity.TrackingEntry, error) {
	entry := &entity.TrackingEntry{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		ShipmentID: shipmentID,
		Status:     status,
		Note:       note,
	}

	if err := s.repo.Tracking.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *shipmentService) reloadShipment(ctx context.Context, id uuid.UUID) (*response.ShipmentResponse, error) {
	shipment, err := s.repo.Shipment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload shipment %s: %w", id.String(), err)
	}
	if shipment == nil {
		// Deleted out from under us between the update and the reload.
		return nil, fmt.Errorf("shipment %s: %w", id.String(), ErrNotFound)
	}

	history, err := s.repo.Tracking.FindByShipmentID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load tracking history: %w", err)
	}

	return response.ShipmentToResponse(shipment, history), nil
}

func (s *shipmentService) invalidateCaches(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, shipmentKeyPrefix); err != nil {
		s.log.Warn("Failed to invalidate shipment cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPrefix(ctx, statsKeyPrefix); err != nil {
		s.log.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

// canRead: the owning customer, the assigned driver, and admins.
func canRead(shipment *entity.Shipment, actorID uuid.UUID, role entity.UserRole) bool {
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleCustomer:
		return shipment.CustomerID == actorID
	case entity.RoleDriver:
		return shipment.DriverID != nil && *shipment.DriverID == actorID
	}
	return false
}

// canTransition: admins may drive any edge, the assigned driver moves
// the shipment forward, and the owning customer may only cancel.
func canTransition(shipment *entity.Shipment, actorID uuid.UUID, role entity.UserRole, newStatus entity.ShipmentStatus) bool {
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleDriver:
		return shipment.DriverID != nil && *shipment.DriverID == actorID
	case entity.RoleCustomer:
		return shipment.CustomerID == actorID && newStatus == entity.StatusCancelled
	}
	return false
}

func toAddress(in request.AddressInput) entity.Address {
	return entity.Address{
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		ZipCode: in.ZipCode,
		Coordinates: entity.Coordinates{
			Latitude:  in.Coordinates.Latitude,
			Longitude: in.Coordinates.Longitude,
		},
	}
}

func toPackage(in request.PackageInput) entity.Package {
	return entity.Package{
		Weight: in.Weight,
		Dimensions: entity.Dimensions{
			Length: in.Dimensions.Length,
			Width:  in.Dimensions.Width,
			Height: in.Dimensions.Height,
		},
		Type:        entity.PackageType(in.Type),
		Description: in.Description,
	}
}

func strPtr(s string) *string {
	return &s
}

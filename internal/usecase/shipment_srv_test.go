package usecase

import (
	"context"
	"testing"
	"time"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type shipmentFixture struct {
	svc      ShipmentService
	repo     *repository.Repository
	users    *fakeUserRepo
	tracking *fakeTrackingRepo
	cache    *fakeCache

	customer *entity.User
	driver   *entity.User
}

func newShipmentFixture(t *testing.T) *shipmentFixture {
	t.Helper()
	repo, users, _, tracking := newTestRepository()
	cache := newFakeCache()

	f := &shipmentFixture{
		svc:      NewShipmentService(repo, cache, zap.NewNop()),
		repo:     repo,
		users:    users,
		tracking: tracking,
		cache:    cache,
		customer: seedUser(t, users, entity.RoleCustomer, true),
		driver:   seedUser(t, users, entity.RoleDriver, true),
	}
	return f
}

func seedUser(t *testing.T, users *fakeUserRepo, role entity.UserRole, approved bool) *entity.User {
	t.Helper()
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         "Test " + string(role),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$10$fake",
		Phone:        "5550000000",
		Role:         role,
		IsApproved:   approved,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createReq(weight float64, pkgType string) *request.CreateShipmentRequest {
	address := request.AddressInput{
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
		Coordinates: request.CoordinatesInput{
			Latitude:  39.78,
			Longitude: -89.65,
		},
	}
	return &request.CreateShipmentRequest{
		PickupAddress:   address,
		DeliveryAddress: address,
		Package: request.PackageInput{
			Weight:     weight,
			Dimensions: request.DimensionsInput{Length: 10, Width: 10, Height: 10},
			Type:       pkgType,
		},
		PaymentMethod: "cash",
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name    string
		weight  float64
		pkgType string
		want    float64
	}{
		{"standard 5kg", 5, "standard", 20},
		{"fragile 5kg surcharge", 5, "fragile", 30},
		{"electronics no surcharge", 5, "electronics", 20},
		{"documents light", 0.5, "documents", 11},
		{"fragile rounds", 1.3, "fragile", 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCost(request.PackageInput{Weight: tt.weight, Type: tt.pkgType})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateShipment(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCreated, resp.Status)
	assert.Equal(t, float64(20), resp.EstimatedCost)
	assert.Equal(t, entity.PaymentStatusPending, resp.PaymentStatus)
	assert.Nil(t, resp.DriverID)
	require.Len(t, resp.TrackingHistory, 1)
	assert.Equal(t, entity.StatusCreated, resp.TrackingHistory[0].Status)
}

func TestCreateShipmentRollsBackOnTrackingFailure(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	f.tracking.failing = true

	_, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.Error(t, err)

	shipments, err := f.repo.Shipment.FindByCustomerID(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, shipments)
}

func TestQuote(t *testing.T) {
	f := newShipmentFixture(t)

	resp, err := f.svc.Quote(&request.QuoteRequest{
		Package: request.PackageInput{
			Weight:     5,
			Dimensions: request.DimensionsInput{Length: 1, Width: 1, Height: 1},
			Type:       "fragile",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(30), resp.EstimatedCost)
	assert.NotEmpty(t, resp.EstimatedDeliveryTime)
}

func TestGetByIDAccess(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	otherCustomer := seedUser(t, f.users, entity.RoleCustomer, true)
	admin := seedUser(t, f.users, entity.RoleAdmin, true)

	// Owner and admin can read it.
	_, err = f.svc.GetByID(ctx, created.ID, f.customer.ID.String(), entity.RoleCustomer)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(ctx, created.ID, admin.ID.String(), entity.RoleAdmin)
	assert.NoError(t, err)

	// Another customer and an unassigned driver cannot.
	_, err = f.svc.GetByID(ctx, created.ID, otherCustomer.ID.String(), entity.RoleCustomer)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetByID(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver)
	assert.ErrorIs(t, err, ErrForbidden)

	// Once assigned the driver gains access.
	_, err = f.svc.Accept(ctx, created.ID, f.driver.ID.String())
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, uuid.NewString(), f.customer.ID.String(), entity.RoleCustomer)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilterByCategory(t *testing.T) {
	byStatus := func(status entity.ShipmentStatus) *entity.Shipment {
		return &entity.Shipment{Status: status}
	}
	shipments := []*entity.Shipment{
		byStatus(entity.StatusCreated),
		byStatus(entity.StatusInTransit),
		byStatus(entity.StatusDelivered),
		byStatus(entity.StatusCancelled),
	}

	assert.Len(t, FilterByCategory(shipments, CategoryAll), 4)
	assert.Len(t, FilterByCategory(shipments, ""), 4)
	assert.Len(t, FilterByCategory(shipments, CategoryActive), 2)
	assert.Len(t, FilterByCategory(shipments, CategoryDelivered), 1)
	assert.Len(t, FilterByCategory(shipments, CategoryCancelled), 1)
}

func TestListAvailable(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(1, "standard"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(2, "standard"))
	require.NoError(t, err)

	available, err := f.svc.ListAvailable(ctx, f.driver.ID.String())
	require.NoError(t, err)
	assert.Len(t, available, 2)

	// Accepting one removes it from the pool, cache included.
	_, err = f.svc.Accept(ctx, first.ID, f.driver.ID.String())
	require.NoError(t, err)

	available, err = f.svc.ListAvailable(ctx, f.driver.ID.String())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, second.ID, available[0].ID)
}

func TestListAvailableRequiresApprovedDriver(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	unapproved := seedUser(t, f.users, entity.RoleDriver, false)
	_, err := f.svc.ListAvailable(ctx, unapproved.ID.String())
	assert.ErrorIs(t, err, ErrDriverNotApproved)

	_, err = f.svc.ListAvailable(ctx, f.customer.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptIsFirstComeFirstServed(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	resp, err := f.svc.Accept(ctx, created.ID, f.driver.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAssigned, resp.Status)
	require.NotNil(t, resp.DriverID)
	assert.Equal(t, f.driver.ID.String(), *resp.DriverID)
	assert.Len(t, resp.TrackingHistory, 2)

	// A second driver loses the race.
	rival := seedUser(t, f.users, entity.RoleDriver, true)
	_, err = f.svc.Accept(ctx, created.ID, rival.ID.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptRequiresApproval(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	unapproved := seedUser(t, f.users, entity.RoleDriver, false)
	_, err = f.svc.Accept(ctx, created.ID, unapproved.ID.String())
	assert.ErrorIs(t, err, ErrDriverNotApproved)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, created.ID, f.driver.ID.String())
	require.NoError(t, err)

	for _, status := range []string{"picked_up", "in_transit", "delivered"} {
		updated, err := f.svc.UpdateStatus(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver,
			&request.UpdateStatusRequest{Status: status})
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, entity.ShipmentStatus(status), updated.Status)
	}

	// One history entry per transition plus the creation entry.
	final, err := f.svc.GetByID(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver)
	require.NoError(t, err)
	assert.Len(t, final.TrackingHistory, 5)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, created.ID, f.driver.ID.String())
	require.NoError(t, err)

	// Skipping picked_up is not allowed and must leave the shipment
	// unmodified.
	_, err = f.svc.UpdateStatus(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver,
		&request.UpdateStatusRequest{Status: "in_transit"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	current, err := f.svc.GetByID(ctx, created.ID, f.driver.ID.String(), entity.RoleDriver)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAssigned, current.Status)
	assert.Len(t, current.TrackingHistory, 2)
}

func TestUpdateStatusRoleRules(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	// The owning customer may cancel but not advance.
	_, err = f.svc.UpdateStatus(ctx, created.ID, f.customer.ID.String(), entity.RoleCustomer,
		&request.UpdateStatusRequest{Status: "assigned"})
	assert.ErrorIs(t, err, ErrForbidden)

	other := seedUser(t, f.users, entity.RoleCustomer, true)
	_, err = f.svc.UpdateStatus(ctx, created.ID, other.ID.String(), entity.RoleCustomer,
		&request.UpdateStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.UpdateStatus(ctx, created.ID, f.customer.ID.String(), entity.RoleCustomer,
		&request.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)

	// Terminal states are absorbing.
	_, err = f.svc.UpdateStatus(ctx, created.ID, f.customer.ID.String(), entity.RoleCustomer,
		&request.UpdateStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// vanishingShipmentRepo deletes the shipment right after a successful
// status update, as a concurrent admin delete would.
type vanishingShipmentRepo struct {
	*fakeShipmentRepo
}

func (r *vanishingShipmentRepo) UpdateStatus(ctx context.Context, shipmentID uuid.UUID, from, to entity.ShipmentStatus) (bool, error) {
	ok, err := r.fakeShipmentRepo.UpdateStatus(ctx, shipmentID, from, to)
	if ok {
		_ = r.fakeShipmentRepo.Delete(ctx, shipmentID)
	}
	return ok, err
}

func TestUpdateStatusShipmentDeletedConcurrently(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customer.ID.String(), createReq(5, "standard"))
	require.NoError(t, err)

	shipments := f.repo.Shipment.(*fakeShipmentRepo)
	f.repo.Shipment = &vanishingShipmentRepo{fakeShipmentRepo: shipments}

	_, err = f.svc.UpdateStatus(ctx, created.ID, f.customer.ID.String(), entity.RoleCustomer,
		&request.UpdateStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentMethods(t *testing.T) {
	f := newShipmentFixture(t)

	methods := f.svc.PaymentMethods()
	require.Len(t, methods, 3)
	assert.Equal(t, "stripe", methods[0].ID)
}

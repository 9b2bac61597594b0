package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"

	"github.com/google/uuid"
)

var errTrackingDown = errors.New("tracking store unavailable")

// In-memory repository doubles. They mirror the SQL semantics the real
// repositories rely on, in particular the conditional updates.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role entity.UserRole) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, user := range r.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountUnapprovedDrivers(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, user := range r.users {
		if user.Role == entity.RoleDriver && !user.IsApproved {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Approve(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.Role != entity.RoleDriver {
		return false, nil
	}
	user.IsApproved = true
	return true, nil
}

type fakeShipmentRepo struct {
	mu        sync.Mutex
	shipments map[uuid.UUID]*entity.Shipment
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{shipments: make(map[uuid.UUID]*entity.Shipment)}
}

func (r *fakeShipmentRepo) Create(_ context.Context, shipment *entity.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return nil
}

func (r *fakeShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shipment, ok := r.shipments[id]
	if !ok {
		return nil, nil
	}
	copied := *shipment
	return &copied, nil
}

func (r *fakeShipmentRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID) ([]*entity.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Shipment
	for _, shipment := range r.shipments {
		if shipment.CustomerID == customerID {
			copied := *shipment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeShipmentRepo) FindAvailable(_ context.Context) ([]*entity.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Shipment
	for _, shipment := range r.shipments {
		if shipment.Status == entity.StatusCreated && shipment.DriverID == nil {
			copied := *shipment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeShipmentRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.Shipment, 0, len(r.shipments))
	for _, shipment := range r.shipments {
		copied := *shipment
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeShipmentRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.shipments)), nil
}

func (r *fakeShipmentRepo) CountByStatus(_ context.Context) (map[entity.ShipmentStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[entity.ShipmentStatus]int64)
	for _, shipment := range r.shipments {
		out[shipment.Status]++
	}
	return out, nil
}

func (r *fakeShipmentRepo) DeliveredRevenue(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, shipment := range r.shipments {
		if shipment.Status == entity.StatusDelivered {
			sum += shipment.EstimatedCost
		}
	}
	return sum, nil
}

func (r *fakeShipmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shipments, id)
	return nil
}

func (r *fakeShipmentRepo) Assign(_ context.Context, shipmentID, driverID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shipment, ok := r.shipments[shipmentID]
	if !ok || shipment.Status != entity.StatusCreated || shipment.DriverID != nil {
		return false, nil
	}
	driver := driverID
	shipment.DriverID = &driver
	shipment.Status = entity.StatusAssigned
	shipment.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeShipmentRepo) UpdateStatus(_ context.Context, shipmentID uuid.UUID, from, to entity.ShipmentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shipment, ok := r.shipments[shipmentID]
	if !ok || shipment.Status != from {
		return false, nil
	}
	shipment.Status = to
	shipment.UpdatedAt = time.Now()
	return true, nil
}

type fakeTrackingRepo struct {
	mu      sync.Mutex
	entries []*entity.TrackingEntry
	failing bool
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{}
}

func (r *fakeTrackingRepo) Create(_ context.Context, entry *entity.TrackingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errTrackingDown
	}
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeTrackingRepo) FindByShipmentID(_ context.Context, shipmentID uuid.UUID) ([]*entity.TrackingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.TrackingEntry
	for _, entry := range r.entries {
		if entry.ShipmentID == shipmentID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

func newTestRepository() (*repository.Repository, *fakeUserRepo, *fakeShipmentRepo, *fakeTrackingRepo) {
	users := newFakeUserRepo()
	shipments := newFakeShipmentRepo()
	tracking := newFakeTrackingRepo()
	return &repository.Repository{
		User:     users,
		Shipment: shipments,
		Tracking: tracking,
	}, users, shipments, tracking
}

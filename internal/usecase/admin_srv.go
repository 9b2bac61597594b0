package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/internal/dto/request"
	"cargo-delivery/internal/dto/response"
	"cargo-delivery/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

type AdminService interface {
	Stats(ctx context.Context) (*response.StatsResponse, error)
	ListShipments(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[*response.ShipmentResponse], error)
	ListUsers(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	ApproveDriver(ctx context.Context, driverID string) error
}

type adminService struct {
	repo  *repository.Repository
	cache cache.Cache
	log   *zap.Logger
}

func NewAdminService(repo *repository.Repository, cache cache.Cache, log *zap.Logger) AdminService {
	return &adminService{
		repo:  repo,
		cache: cache,
		log:   log.With(zap.String("service", "admin")),
	}
}

// Stats aggregates the dashboard counters. The result is cached
// briefly since every count hits the database.
func (s *adminService) Stats(ctx context.Context) (*response.StatsResponse, error) {
	if data, err := s.cache.Get(ctx, statsCacheKey); err == nil && data != nil {
		var cached response.StatsResponse
		decodeErr := json.Unmarshal(data, &cached)
		if decodeErr == nil {
			return &cached, nil
		}
		s.log.Warn("Failed to decode cached stats", zap.Error(decodeErr))
	}

	totalUsers, err := s.repo.User.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	totalCustomers, err := s.repo.User.CountByRole(ctx, entity.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	totalDrivers, err := s.repo.User.CountByRole(ctx, entity.RoleDriver)
	if err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}

	pendingDrivers, err := s.repo.User.CountUnapprovedDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending drivers: %w", err)
	}

	totalShipments, err := s.repo.Shipment.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count shipments: %w", err)
	}

	byStatus, err := s.repo.Shipment.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count shipments by status: %w", err)
	}

	revenue, err := s.repo.Shipment.DeliveredRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum delivered revenue: %w", err)
	}

	shipmentsByStatus := make(map[string]int64, len(byStatus))
	var active int64
	for status, count := range byStatus {
		shipmentsByStatus[string(status)] = count
		if !status.Terminal() {
			active += count
		}
	}

	stats := &response.StatsResponse{
		TotalUsers:        totalUsers,
		TotalCustomers:    totalCustomers,
		TotalDrivers:      totalDrivers,
		PendingDrivers:    pendingDrivers,
		TotalShipments:    totalShipments,
		ShipmentsByStatus: shipmentsByStatus,
		ActiveShipments:   active,
		DeliveredRevenue:  revenue,
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		s.log.Warn("Failed to cache stats", zap.Error(err))
	}

	return stats, nil
}

func (s *adminService) ListShipments(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[*response.ShipmentResponse], error) {
	shipments, err := s.repo.Shipment.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	total, err := s.repo.Shipment.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count shipments: %w", err)
	}

	return response.NewPaginatedResponse(response.ShipmentsToResponse(shipments), page.Page, page.Limit(), total), nil
}

func (s *adminService) ListUsers(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	users, err := s.repo.User.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := s.repo.User.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	responses := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, response.UserToResponse(user))
	}

	return response.NewPaginatedResponse(responses, page.Page, page.Limit(), total), nil
}

func (s *adminService) ApproveDriver(ctx context.Context, driverID string) error {
	id, err := uuid.Parse(driverID)
	if err != nil {
		return fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	// The UPDATE itself checks the role, so a non-driver id and an
	// unknown id both land here.
	ok, err := s.repo.User.Approve(ctx, id)
	if err != nil {
		s.log.Error("Failed to approve driver", zap.Error(err), zap.String("driver_id", driverID))
		return fmt.Errorf("approve driver: %w", err)
	}
	if !ok {
		return fmt.Errorf("driver %s: %w", driverID, ErrNotFound)
	}

	if err := s.cache.DeleteByPrefix(ctx, statsKeyPrefix); err != nil {
		s.log.Warn("Failed to invalidate stats cache", zap.Error(err))
	}

	s.log.Info("Driver approved", zap.String("driver_id", driverID))
	return nil
}

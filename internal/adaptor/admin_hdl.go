package adaptor

import (
	"net/http"

	"cargo-delivery/internal/dto/request"
	"cargo-delivery/internal/usecase"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "fetch stats")
		return
	}

	utils.ResponseSuccess(w, "Stats retrieved", response)
}

// ListShipments handles GET /api/admin/shipments?page=&per_page=
func (h *AdminHandler) ListShipments(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListShipments(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list all shipments")
		return
	}

	utils.ResponseSuccess(w, "Shipments retrieved", response)
}

// ListUsers handles GET /api/admin/users?page=&per_page=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.ListUsers(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved", response)
}

// ApproveDriver handles PUT /api/admin/drivers/{id}/approve
func (h *AdminHandler) ApproveDriver(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	if err := h.service.ApproveDriver(r.Context(), driverID); err != nil {
		handleServiceError(w, h.log, err, "approve driver")
		return
	}

	utils.ResponseSuccess(w, "Driver approved", nil)
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	return request.PaginatedRequest{
		Page:    utils.ParseInt(r.URL.Query().Get("page"), 1),
		PerPage: utils.ParseInt(r.URL.Query().Get("per_page"), 10),
	}
}

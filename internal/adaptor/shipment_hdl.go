package adaptor

import (
	"encoding/json"
	"net/http"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/dto/request"
	"cargo-delivery/internal/usecase"
	"cargo-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShipmentHandler struct {
	service usecase.ShipmentService
	log     *zap.Logger
}

func NewShipmentHandler(service usecase.ShipmentService, log *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/shipments
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShipmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	response, err := h.service.Create(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create shipment")
		return
	}

	utils.ResponseCreated(w, "Shipment created", response)
}

// Quote handles POST /api/shipments/quote
func (h *ShipmentHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	response, err := h.service.Quote(&req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote shipment")
		return
	}

	utils.ResponseSuccess(w, "Quote calculated", response)
}

// List handles GET /api/shipments?category=all|active|delivered|cancelled
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	category := r.URL.Query().Get("category")

	response, err := h.service.ListForCustomer(r.Context(), userID.String(), category)
	if err != nil {
		handleServiceError(w, h.log, err, "list shipments")
		return
	}

	utils.ResponseSuccess(w, "Shipments retrieved", response)
}

// GetByID handles GET /api/shipments/{id}
func (h *ShipmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	response, err := h.service.GetByID(r.Context(), shipmentID, userID.String(), entity.UserRole(role))
	if err != nil {
		handleServiceError(w, h.log, err, "fetch shipment")
		return
	}

	utils.ResponseSuccess(w, "Shipment retrieved", response)
}

// ListAvailable handles GET /api/shipments/available
func (h *ShipmentHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	response, err := h.service.ListAvailable(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "list available shipments")
		return
	}

	utils.ResponseSuccess(w, "Available shipments retrieved", response)
}

// Accept handles POST /api/shipments/{id}/accept
func (h *ShipmentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	response, err := h.service.Accept(r.Context(), shipmentID, userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "accept shipment")
		return
	}

	utils.ResponseSuccess(w, "Shipment accepted", response)
}

// UpdateStatus handles PUT /api/shipments/{id}/status
func (h *ShipmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")

	var req request.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	response, err := h.service.UpdateStatus(r.Context(), shipmentID, userID.String(), entity.UserRole(role), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update shipment status")
		return
	}

	utils.ResponseSuccess(w, "Shipment status updated", response)
}

// PaymentMethods handles GET /api/payment-methods
func (h *ShipmentHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, "Payment methods retrieved", h.service.PaymentMethods())
}

package response

import (
	"time"

	"cargo-delivery/internal/data/entity"
)

type TrackingEntryResponse struct {
	ID        string                `json:"id"`
	Status    entity.ShipmentStatus `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	Note      *string               `json:"note,omitempty"`
}

type ShipmentResponse struct {
	ID                    string                  `json:"id"`
	CustomerID            string                  `json:"customerId"`
	DriverID              *string                 `json:"driverId,omitempty"`
	PickupAddress         entity.Address          `json:"pickupAddress"`
	DeliveryAddress       entity.Address          `json:"deliveryAddress"`
	Package               entity.Package          `json:"package"`
	Status                entity.ShipmentStatus   `json:"status"`
	EstimatedCost         float64                 `json:"estimatedCost"`
	EstimatedDeliveryTime string                  `json:"estimatedDeliveryTime"`
	PaymentMethod         entity.PaymentMethod    `json:"paymentMethod"`
	PaymentStatus         entity.PaymentStatus    `json:"paymentStatus"`
	TrackingHistory       []TrackingEntryResponse `json:"trackingHistory,omitempty"`
	CreatedAt             time.Time               `json:"createdAt"`
}

type QuoteResponse struct {
	EstimatedCost         float64 `json:"estimatedCost"`
	EstimatedDeliveryTime string  `json:"estimatedDeliveryTime"`
}

type PaymentMethodResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Helper converters
func TrackingEntryToResponse(entry *entity.TrackingEntry) TrackingEntryResponse {
	return TrackingEntryResponse{
		ID:        entry.ID.String(),
		Status:    entry.Status,
		Timestamp: entry.CreatedAt,
		Note:      entry.Note,
	}
}

func ShipmentToResponse(shipment *entity.Shipment, history []*entity.TrackingEntry) *ShipmentResponse {
	resp := &ShipmentResponse{
		ID:                    shipment.ID.String(),
		CustomerID:            shipment.CustomerID.String(),
		PickupAddress:         shipment.PickupAddress,
		DeliveryAddress:       shipment.DeliveryAddress,
		Package:               shipment.Package,
		Status:                shipment.Status,
		EstimatedCost:         shipment.EstimatedCost,
		EstimatedDeliveryTime: shipment.EstimatedDeliveryTime,
		PaymentMethod:         shipment.PaymentMethod,
		PaymentStatus:         shipment.PaymentStatus,
		CreatedAt:             shipment.CreatedAt,
	}

	if shipment.DriverID != nil {
		driverID := shipment.DriverID.String()
		resp.DriverID = &driverID
	}

	if len(history) > 0 {
		resp.TrackingHistory = make([]TrackingEntryResponse, len(history))
		for i, entry := range history {
			resp.TrackingHistory[i] = TrackingEntryToResponse(entry)
		}
	}

	return resp
}

func ShipmentsToResponse(shipments []*entity.Shipment) []*ShipmentResponse {
	responses := make([]*ShipmentResponse, len(shipments))
	for i, shipment := range shipments {
		responses[i] = ShipmentToResponse(shipment, nil)
	}
	return responses
}

package entity

import (
	"github.com/google/uuid"
)

type ShipmentStatus string

const (
	StatusCreated   ShipmentStatus = "created"
	StatusAssigned  ShipmentStatus = "assigned"
	StatusPickedUp  ShipmentStatus = "picked_up"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// Valid reports whether s is one of the known shipment statuses.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusAssigned, StatusPickedUp, StatusInTransit,
		StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is a legal edge of the
// shipment state machine:
//
//	created -> assigned -> picked_up -> in_transit -> delivered
//
// with cancelled reachable from every non-terminal state. Backward moves
// and skipped states are rejected.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusCreated:
		return next == StatusAssigned
	case StatusAssigned:
		return next == StatusPickedUp
	case StatusPickedUp:
		return next == StatusInTransit
	case StatusInTransit:
		return next == StatusDelivered
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodCash   PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PackageType string

const (
	PackageTypeFragile     PackageType = "fragile"
	PackageTypeStandard    PackageType = "standard"
	PackageTypeElectronics PackageType = "electronics"
	PackageTypeDocuments   PackageType = "documents"
)

// Coordinates, Address and Package are value objects embedded in a
// shipment. They are stored as JSONB documents, so the json tags double
// as the persistence format.

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Address struct {
	Street      string      `json:"street"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	ZipCode     string      `json:"zipCode"`
	Coordinates Coordinates `json:"coordinates"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Package struct {
	Weight      float64     `json:"weight"`
	Dimensions  Dimensions  `json:"dimensions"`
	Type        PackageType `json:"type"`
	Description *string     `json:"description,omitempty"`
}

// Shipment is the owned aggregate of the platform. DriverID stays nil
// while the status is created; once set the shipment is at least assigned.
// EstimatedCost is fixed at creation time and never recomputed.
type Shipment struct {
	Base
	CustomerID            uuid.UUID      `db:"customer_id"`
	DriverID              *uuid.UUID     `db:"driver_id"`
	PickupAddress         Address        `db:"pickup_address"`
	DeliveryAddress       Address        `db:"delivery_address"`
	Package               Package        `db:"package"`
	Status                ShipmentStatus `db:"status"`
	EstimatedCost         float64        `db:"estimated_cost"`
	EstimatedDeliveryTime string         `db:"estimated_delivery_time"`
	PaymentMethod         PaymentMethod  `db:"payment_method"`
	PaymentStatus         PaymentStatus  `db:"payment_status"`
}

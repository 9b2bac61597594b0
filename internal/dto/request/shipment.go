package request

// Field names follow the JSON shapes the mobile client already uses.

type CoordinatesInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type AddressInput struct {
	Street      string           `json:"street" validate:"required"`
	City        string           `json:"city" validate:"required"`
	State       string           `json:"state" validate:"required"`
	ZipCode     string           `json:"zipCode" validate:"required"`
	Coordinates CoordinatesInput `json:"coordinates"`
}

type DimensionsInput struct {
	Length float64 `json:"length" validate:"gt=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type PackageInput struct {
	Weight      float64         `json:"weight" validate:"required,gt=0"`
	Dimensions  DimensionsInput `json:"dimensions" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=fragile standard electronics documents"`
	Description *string         `json:"description,omitempty"`
}

type CreateShipmentRequest struct {
	PickupAddress   AddressInput `json:"pickupAddress" validate:"required"`
	DeliveryAddress AddressInput `json:"deliveryAddress" validate:"required"`
	Package         PackageInput `json:"package" validate:"required"`
	PaymentMethod   string       `json:"paymentMethod" validate:"required,oneof=stripe paypal cash"`
}

type QuoteRequest struct {
	Package PackageInput `json:"package" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=assigned picked_up in_transit delivered cancelled"`
	Note   *string `json:"note,omitempty"`
}

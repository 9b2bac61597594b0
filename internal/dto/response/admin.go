package response

type StatsResponse struct {
	TotalUsers        int64            `json:"totalUsers"`
	TotalCustomers    int64            `json:"totalCustomers"`
	TotalDrivers      int64            `json:"totalDrivers"`
	PendingDrivers    int64            `json:"pendingDrivers"`
	TotalShipments    int64            `json:"totalShipments"`
	ShipmentsByStatus map[string]int64 `json:"shipmentsByStatus"`
	ActiveShipments   int64            `json:"activeShipments"`
	DeliveredRevenue  float64          `json:"deliveredRevenue"`
}

package commerce

// stockLocationsResponse is the wire format of GET /admin/stock-locations
type stockLocationsResponse struct {
	StockLocations []stockLocationPayload `json:"stock_locations"`
}

type stockLocationPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// variantInventoryResponse is the wire format of GET /admin/variants/:id/inventory
type variantInventoryResponse struct {
	Variant variantInventoryPayload `json:"variant"`
}

type variantInventoryPayload struct {
	ID        string                 `json:"id"`
	Inventory []inventoryItemPayload `json:"inventory"`
}

type inventoryItemPayload struct {
	ID             string                 `json:"id"`
	LocationLevels []locationLevelPayload `json:"location_levels"`
}

type locationLevelPayload struct {
	LocationID        string `json:"location_id"`
	AvailableQuantity int64  `json:"available_quantity"`
	StockedQuantity   int64  `json:"stocked_quantity"`
}

// createReservationResponse is the wire format of POST /admin/reservations
type createReservationResponse struct {
	Reservation reservationPayload `json:"reservation"`
}

type reservationPayload struct {
	ID              string `json:"id"`
	LineItemID      string `json:"line_item_id"`
	InventoryItemID string `json:"inventory_item_id"`
	LocationID      string `json:"location_id"`
	Quantity        int64  `json:"quantity"`
}

// errorResponse is the wire format of admin API error bodies
type errorResponse struct {
	Message string `json:"message"`
}

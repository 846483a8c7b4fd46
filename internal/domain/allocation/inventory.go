package allocation

// StockLocation is a selectable place inventory is held.
type StockLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LocationLevel is the stock level of an inventory item at one location.
type LocationLevel struct {
	LocationID        string `json:"location_id"`
	AvailableQuantity int64  `json:"available_quantity"`
	StockedQuantity   int64  `json:"stocked_quantity"`
}

// InventoryItem is the stock-tracking record associated with a product
// variant, holding per-location availability.
type InventoryItem struct {
	ID             string          `json:"id"`
	LocationLevels []LocationLevel `json:"location_levels"`
}

// LevelAt returns the stock level for the given location, or nil when the
// item has no level at that location.
func (i *InventoryItem) LevelAt(locationID string) *LocationLevel {
	for idx := range i.LocationLevels {
		if i.LocationLevels[idx].LocationID == locationID {
			return &i.LocationLevels[idx]
		}
	}
	return nil
}

package allocation

// LineCapacity is the outcome of resolving how much of a line item may still
// be reserved at a candidate location.
type LineCapacity struct {
	// EffectiveCap is the maximum quantity still reservable. Never negative.
	EffectiveCap int64

	// AvailableQuantity and StockedQuantity are display figures for the
	// candidate location. Nil when no location is chosen, inventory data has
	// not loaded, or the item has no level at the location.
	AvailableQuantity *int64
	StockedQuantity   *int64
}

// ResolveLineCapacity computes the maximum quantity still reservable for one
// line item at a candidate location.
//
// fulfillable is the line item's fulfillable remainder and reserved the sum of
// its existing reservation quantities across all locations. item is the
// variant's canonical inventory item (callers pass the first inventory item of
// the variant; multi-inventory-item variants are not supported) and may be nil
// while inventory data is loading. locationID may be empty when no location
// has been chosen yet.
//
// The resolver is pure and performs no I/O; it must be re-evaluated whenever
// location, reservations, or inventory data change. It never fails: unknown
// stock degrades to a zero cap.
func ResolveLineCapacity(fulfillable, reserved int64, item *InventoryItem, locationID string) LineCapacity {
	lineCapacity := fulfillable - reserved
	// More may be reserved than is fulfillable (e.g. a fulfillment was
	// cancelled after reserving). A negative ceiling would make min() below
	// meaningless, so clamp here.
	if lineCapacity < 0 {
		lineCapacity = 0
	}

	result := LineCapacity{}

	var inventoryCapacity int64
	if locationID != "" && item != nil {
		if level := item.LevelAt(locationID); level != nil {
			available := level.AvailableQuantity
			stocked := level.StockedQuantity
			result.AvailableQuantity = &available
			result.StockedQuantity = &stocked
			inventoryCapacity = available
		}
	}

	// Upstream may report a negative available quantity when a location is
	// oversold; the cap stays at zero in that case.
	result.EffectiveCap = max(min(lineCapacity, inventoryCapacity), 0)
	return result
}

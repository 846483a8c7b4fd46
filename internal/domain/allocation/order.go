package allocation

// Order is the immutable input to an allocation session. It mirrors the
// upstream commerce platform's order shape, reduced to what allocation needs.
type Order struct {
	ID             string
	SalesChannelID string // empty when the order is not scoped to a sales channel
	Items          []LineItem
}

// LineItem is a single ordered line of an order, with enough fulfillment
// progress to derive the fulfillable remainder.
type LineItem struct {
	ID                string
	VariantID         string
	Title             string
	SKU               string
	OrderedQuantity   int64
	FulfilledQuantity int64
	ReturnedQuantity  int64
}

// FulfillableQuantityFunc derives the quantity of a line item still eligible
// for allocation. It is treated as a black box by the rest of the package so
// callers can substitute the upstream platform's own derivation.
type FulfillableQuantityFunc func(item LineItem) int64

// FulfillableQuantity is the default derivation: ordered minus net fulfilled
// (returned units become fulfillable again), never negative. Units shipped are
// counted as fulfilled by the upstream platform, so they are not subtracted
// separately.
func FulfillableQuantity(item LineItem) int64 {
	remainder := item.OrderedQuantity - (item.FulfilledQuantity - item.ReturnedQuantity)
	if remainder < 0 {
		return 0
	}
	return remainder
}

// ReservationRecord is an existing reservation against a line item. Several
// records may exist per line item (partial reservations at different
// locations); allocation only needs their quantity sum.
type ReservationRecord struct {
	LineItemID      string
	InventoryItemID string
	LocationID      string
	Quantity        int64
}

// ReservedQuantities sums existing reservation quantities per line item.
func ReservedQuantities(records []ReservationRecord) map[string]int64 {
	sums := make(map[string]int64, len(records))
	for _, r := range records {
		sums[r.LineItemID] += r.Quantity
	}
	return sums
}

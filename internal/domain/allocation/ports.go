package allocation

import "context"

// StockLocationDirectory lists the stock locations an operator may allocate
// from. When salesChannelID is non-empty the result is scoped to locations
// serving that channel; otherwise it is unscoped. Order is significant and
// preserved for display.
type StockLocationDirectory interface {
	ListStockLocations(ctx context.Context, salesChannelID string) ([]StockLocation, error)
}

// VariantInventoryQuery returns the inventory items tracking a product
// variant, each with its per-location stock levels. The first item is treated
// as the canonical one for the variant.
type VariantInventoryQuery interface {
	GetVariantInventory(ctx context.Context, variantID string) ([]InventoryItem, error)
}

// ReservationCreator persists a reservation in the upstream commerce
// platform. The platform performs the authoritative availability check; a
// rejection here is an ordinary per-line failure, not a session error.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, req ReservationRequest) error
}

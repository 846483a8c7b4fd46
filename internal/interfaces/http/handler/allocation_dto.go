package handler

import (
	appalloc "github.com/erp/allocation/internal/application/allocation"
	"github.com/erp/allocation/internal/domain/allocation"
)

// OpenSessionRequest opens an allocation session against an order snapshot
type OpenSessionRequest struct {
	Order        OrderRequest         `json:"order" binding:"required"`
	Reservations []ReservationRequest `json:"reservations"`
}

// OrderRequest is the order snapshot in an open-session request
type OrderRequest struct {
	ID             string            `json:"id" binding:"required"`
	SalesChannelID string            `json:"sales_channel_id"`
	Items          []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// LineItemRequest is one ordered line in an open-session request
type LineItemRequest struct {
	ID                string `json:"id" binding:"required"`
	VariantID         string `json:"variant_id" binding:"required"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	OrderedQuantity   int64  `json:"ordered_quantity" binding:"required,min=1"`
	FulfilledQuantity int64  `json:"fulfilled_quantity" binding:"min=0"`
	ReturnedQuantity  int64  `json:"returned_quantity" binding:"min=0"`
}

// ReservationRequest is an existing reservation in an open-session request
type ReservationRequest struct {
	LineItemID      string `json:"line_item_id" binding:"required"`
	InventoryItemID string `json:"inventory_item_id"`
	LocationID      string `json:"location_id"`
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
}

// SelectLocationRequest changes the session's selected stock location
type SelectLocationRequest struct {
	LocationID string `json:"location_id" binding:"required"`
}

// SetQuantityRequest changes the requested quantity for a line item
type SetQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"min=0"`
}

// toInput converts the request to the application layer's input type
func (r *OpenSessionRequest) toInput() appalloc.OpenSessionInput {
	items := make([]allocation.LineItem, 0, len(r.Order.Items))
	for _, item := range r.Order.Items {
		items = append(items, allocation.LineItem{
			ID:                item.ID,
			VariantID:         item.VariantID,
			Title:             item.Title,
			SKU:               item.SKU,
			OrderedQuantity:   item.OrderedQuantity,
			FulfilledQuantity: item.FulfilledQuantity,
			ReturnedQuantity:  item.ReturnedQuantity,
		})
	}

	reservations := make([]allocation.ReservationRecord, 0, len(r.Reservations))
	for _, res := range r.Reservations {
		reservations = append(reservations, allocation.ReservationRecord{
			LineItemID:      res.LineItemID,
			InventoryItemID: res.InventoryItemID,
			LocationID:      res.LocationID,
			Quantity:        res.Quantity,
		})
	}

	return appalloc.OpenSessionInput{
		Order: allocation.Order{
			ID:             r.Order.ID,
			SalesChannelID: r.Order.SalesChannelID,
			Items:          items,
		},
		Reservations: reservations,
	}
}

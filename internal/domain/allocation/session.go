package allocation

import (
	"time"

	"github.com/erp/allocation/internal/domain/shared"
	"github.com/google/uuid"
)

// BindingState tracks the inventory binding lifecycle of a line item's
// allocation request. Until the binding is resolved there is no inventory
// item to attach a reservation to, so quantity input is non-functional.
type BindingState string

const (
	BindingUnresolved BindingState = "UNRESOLVED"
	BindingLoading    BindingState = "LOADING"
	BindingResolved   BindingState = "RESOLVED"
)

// AllocationRequest is the session-local, mutable allocation state for one
// line item: the operator's requested quantity plus the resolved inventory
// binding, cached once the variant's inventory data loads.
type AllocationRequest struct {
	LineItemID      string
	Quantity        int64
	InventoryItemID string
	State           BindingState

	// AllocatedQuantity is the quantity successfully reserved through this
	// session. Lines that already went through are excluded from
	// re-submission so a retry after partial failure cannot duplicate them.
	AllocatedQuantity int64
}

// ReservationRequest is one reservation-creation call to be issued on submit.
type ReservationRequest struct {
	Quantity        int64  `json:"quantity"`
	LineItemID      string `json:"line_item_id"`
	InventoryItemID string `json:"inventory_item_id"`
	LocationID      string `json:"location_id"`
}

// Session orchestrates the allocation flow for one order: it owns the chosen
// location, the per-item requested quantities, and builds the reservation
// batch for submission. A session is not safe for concurrent use; callers
// serialize access per session.
type Session struct {
	ID        uuid.UUID
	Order     Order
	CreatedAt time.Time
	UpdatedAt time.Time

	locationID  string
	requests    []*AllocationRequest
	byLineItem  map[string]*AllocationRequest
	reserved    map[string]int64
	inventory   map[string]*InventoryItem
	fulfillable FulfillableQuantityFunc
	closed      bool
}

// NewSession opens an allocation session for an order. One AllocationRequest
// is created per line item with quantity 0 and an unresolved inventory
// binding. reservedSums holds the sum of existing reservation quantities per
// line item; missing entries mean no existing reservations.
func NewSession(order Order, reservedSums map[string]int64, fulfillable FulfillableQuantityFunc) *Session {
	if fulfillable == nil {
		fulfillable = FulfillableQuantity
	}
	now := time.Now()
	s := &Session{
		ID:          uuid.New(),
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
		requests:    make([]*AllocationRequest, 0, len(order.Items)),
		byLineItem:  make(map[string]*AllocationRequest, len(order.Items)),
		reserved:    make(map[string]int64, len(reservedSums)),
		inventory:   make(map[string]*InventoryItem, len(order.Items)),
		fulfillable: fulfillable,
	}
	for id, qty := range reservedSums {
		s.reserved[id] = qty
	}
	for _, item := range order.Items {
		req := &AllocationRequest{
			LineItemID: item.ID,
			State:      BindingUnresolved,
		}
		s.requests = append(s.requests, req)
		s.byLineItem[item.ID] = req
	}
	return s
}

// LocationID returns the currently selected stock location, or empty.
func (s *Session) LocationID() string {
	return s.locationID
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s.closed
}

// Requests returns the session's allocation requests in order-line order.
func (s *Session) Requests() []*AllocationRequest {
	return s.requests
}

// SelectLocation sets the active stock location. Previously entered
// quantities are kept as operator-entered values pending re-validation; only
// the displayed caps change. Authoritative enforcement happens upstream at
// reservation time.
func (s *Session) SelectLocation(locationID string) error {
	if s.closed {
		return shared.ErrSessionClosed
	}
	if locationID == "" {
		return shared.ErrInvalidInput
	}
	s.locationID = locationID
	s.UpdatedAt = time.Now()
	return nil
}

// MarkInventoryLoading transitions a line item's binding to LOADING.
func (s *Session) MarkInventoryLoading(lineItemID string) error {
	req, ok := s.byLineItem[lineItemID]
	if !ok {
		return shared.ErrLineItemNotFound
	}
	if req.State == BindingUnresolved {
		req.State = BindingLoading
	}
	return nil
}

// BindInventory caches the canonical inventory item for a line item and
// transitions the binding to RESOLVED. A nil item means the variant has no
// inventory record; the binding stays unresolved and the line cannot be
// allocated.
func (s *Session) BindInventory(lineItemID string, item *InventoryItem) error {
	req, ok := s.byLineItem[lineItemID]
	if !ok {
		return shared.ErrLineItemNotFound
	}
	if item == nil || item.ID == "" {
		req.State = BindingUnresolved
		return nil
	}
	s.inventory[lineItemID] = item
	req.InventoryItemID = item.ID
	req.State = BindingResolved
	s.UpdatedAt = time.Now()
	return nil
}

// SetQuantity stores the operator's requested quantity for one line item.
// Only non-negativity is enforced here; the upper bound is a UI affordance
// backed by Capacity, with authoritative validation upstream. The line's
// inventory binding must be resolved first.
func (s *Session) SetQuantity(lineItemID string, quantity int64) error {
	if s.closed {
		return shared.ErrSessionClosed
	}
	req, ok := s.byLineItem[lineItemID]
	if !ok {
		return shared.ErrLineItemNotFound
	}
	if quantity < 0 {
		return shared.ErrInvalidQuantity
	}
	if req.State != BindingResolved {
		return shared.ErrInventoryNotResolved
	}
	req.Quantity = quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Capacity resolves the current allocation cap for one line item against the
// selected location.
func (s *Session) Capacity(lineItemID string) (LineCapacity, error) {
	if _, ok := s.byLineItem[lineItemID]; !ok {
		return LineCapacity{}, shared.ErrLineItemNotFound
	}
	item, err := s.lineItem(lineItemID)
	if err != nil {
		return LineCapacity{}, err
	}
	return ResolveLineCapacity(
		s.fulfillable(item),
		s.reserved[lineItemID],
		s.inventory[lineItemID],
		s.locationID,
	), nil
}

// BuildSubmission validates the session and returns one reservation request
// per line item with a non-zero requested quantity, all targeting the
// selected location. Zero-quantity lines are skipped; nothing else is
// pre-filtered.
func (s *Session) BuildSubmission() ([]ReservationRequest, error) {
	if s.closed {
		return nil, shared.ErrSessionClosed
	}
	if s.locationID == "" {
		return nil, shared.ErrNoLocationSelected
	}
	batch := make([]ReservationRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if req.Quantity == 0 || req.State != BindingResolved {
			continue
		}
		batch = append(batch, ReservationRequest{
			Quantity:        req.Quantity,
			LineItemID:      req.LineItemID,
			InventoryItemID: req.InventoryItemID,
			LocationID:      s.locationID,
		})
	}
	return batch, nil
}

// MarkAllocated records a successfully created reservation for a line item.
// The reserved sum grows so recomputed caps reflect the new reservation, and
// the requested quantity resets to zero so a re-submission after partial
// failure retries only the lines that failed.
func (s *Session) MarkAllocated(lineItemID string, quantity int64) error {
	req, ok := s.byLineItem[lineItemID]
	if !ok {
		return shared.ErrLineItemNotFound
	}
	req.AllocatedQuantity += quantity
	req.Quantity = 0
	s.reserved[lineItemID] += quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Close discards the session. In-flight submissions are not rolled back.
func (s *Session) Close() {
	s.closed = true
	s.UpdatedAt = time.Now()
}

// lineItem returns the order line item with the given id.
func (s *Session) lineItem(lineItemID string) (LineItem, error) {
	for _, item := range s.Order.Items {
		if item.ID == lineItemID {
			return item, nil
		}
	}
	return LineItem{}, shared.ErrLineItemNotFound
}

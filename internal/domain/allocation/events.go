package allocation

import (
	"github.com/erp/allocation/internal/domain/shared"
	"github.com/google/uuid"
)

// Allocation event type constants
const (
	// EventTypeAllocationCompleted is raised when every reservation in a
	// submission is created successfully.
	EventTypeAllocationCompleted = "AllocationCompleted"

	// EventTypeAllocationPartial is raised when some reservations in a
	// submission fail. Created reservations are kept; only the failed lines
	// remain open for re-submission.
	EventTypeAllocationPartial = "AllocationPartial"

	// EventTypeAllocationFailed is raised when every reservation in a
	// submission fails.
	EventTypeAllocationFailed = "AllocationFailed"
)

// LineResultInfo carries the per-line outcome of a submission for events.
type LineResultInfo struct {
	LineItemID      string `json:"line_item_id"`
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int64  `json:"quantity"`
	Success         bool   `json:"success"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// AllocationCompletedEvent is raised when a submission fully succeeds
type AllocationCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID    string           `json:"order_id"`
	LocationID string           `json:"location_id"`
	Lines      []LineResultInfo `json:"lines"`
	TotalQty   int64            `json:"total_quantity"`
}

// AllocationPartialEvent is raised when a submission partially fails
type AllocationPartialEvent struct {
	shared.BaseDomainEvent
	OrderID     string           `json:"order_id"`
	LocationID  string           `json:"location_id"`
	Lines       []LineResultInfo `json:"lines"`
	FailedCount int              `json:"failed_count"`
}

// AllocationFailedEvent is raised when every line of a submission fails
type AllocationFailedEvent struct {
	shared.BaseDomainEvent
	OrderID    string           `json:"order_id"`
	LocationID string           `json:"location_id"`
	Lines      []LineResultInfo `json:"lines"`
}

// NewAllocationCompletedEvent creates a new AllocationCompletedEvent
func NewAllocationCompletedEvent(sessionID uuid.UUID, orderID, locationID string, lines []LineResultInfo) *AllocationCompletedEvent {
	var total int64
	for _, l := range lines {
		total += l.Quantity
	}
	return &AllocationCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationCompleted, "AllocationSession", sessionID),
		OrderID:         orderID,
		LocationID:      locationID,
		Lines:           lines,
		TotalQty:        total,
	}
}

// NewAllocationPartialEvent creates a new AllocationPartialEvent
func NewAllocationPartialEvent(sessionID uuid.UUID, orderID, locationID string, lines []LineResultInfo, failedCount int) *AllocationPartialEvent {
	return &AllocationPartialEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationPartial, "AllocationSession", sessionID),
		OrderID:         orderID,
		LocationID:      locationID,
		Lines:           lines,
		FailedCount:     failedCount,
	}
}

// NewAllocationFailedEvent creates a new AllocationFailedEvent
func NewAllocationFailedEvent(sessionID uuid.UUID, orderID, locationID string, lines []LineResultInfo) *AllocationFailedEvent {
	return &AllocationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationFailed, "AllocationSession", sessionID),
		OrderID:         orderID,
		LocationID:      locationID,
		Lines:           lines,
	}
}

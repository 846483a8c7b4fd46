package allocation

import (
	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/google/uuid"
)

// OpenSessionInput carries the order snapshot an allocation session is opened
// against, including its existing reservations.
type OpenSessionInput struct {
	Order        allocation.Order
	Reservations []allocation.ReservationRecord
}

// LineItemView is the per-line-item state of a session as presented to the
// operator: the requested quantity, the resolved cap, and the display figures
// for the selected location. AvailableQuantity and StockedQuantity are nil
// when undefined (no location chosen, inventory not loaded, or no level at
// the location) and rendered as "N/A" by clients.
type LineItemView struct {
	LineItemID        string `json:"line_item_id"`
	VariantID         string `json:"variant_id"`
	Title             string `json:"title,omitempty"`
	SKU               string `json:"sku,omitempty"`
	OrderedQuantity   int64  `json:"ordered_quantity"`
	RequestedQuantity int64  `json:"requested_quantity"`
	AllocatedQuantity int64  `json:"allocated_quantity"`
	InventoryItemID   string `json:"inventory_item_id,omitempty"`
	BindingState      string `json:"binding_state"`
	EffectiveCap      int64  `json:"effective_cap"`
	AvailableQuantity *int64 `json:"available_quantity"`
	StockedQuantity   *int64 `json:"stocked_quantity"`
}

// SessionView is the full session state returned to the operator UI.
type SessionView struct {
	SessionID      uuid.UUID      `json:"session_id"`
	OrderID        string         `json:"order_id"`
	SalesChannelID string         `json:"sales_channel_id,omitempty"`
	LocationID     string         `json:"location_id,omitempty"`
	Items          []LineItemView `json:"items"`
}

// LocationOption is a selectable stock location for the location dropdown.
type LocationOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Submission status values
const (
	SubmissionCompleted = "completed"
	SubmissionPartial   = "partial"
	SubmissionFailed    = "failed"
	SubmissionEmpty     = "empty"
)

// LineSubmissionResult is the outcome of one reservation-creation call.
type LineSubmissionResult struct {
	LineItemID      string `json:"line_item_id"`
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int64  `json:"quantity"`
	Success         bool   `json:"success"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// SubmissionResult is the aggregate outcome of a submit. Status is "empty"
// when no line had a non-zero quantity and nothing was sent upstream.
type SubmissionResult struct {
	SessionID  uuid.UUID              `json:"session_id"`
	OrderID    string                 `json:"order_id"`
	LocationID string                 `json:"location_id"`
	Status     string                 `json:"status"`
	Lines      []LineSubmissionResult `json:"lines"`
}

// FailedCount returns the number of failed lines in the submission.
func (r *SubmissionResult) FailedCount() int {
	failed := 0
	for _, line := range r.Lines {
		if !line.Success {
			failed++
		}
	}
	return failed
}

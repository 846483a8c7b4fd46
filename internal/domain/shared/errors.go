package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNoLocationSelected   = NewDomainError("NO_LOCATION_SELECTED", "A stock location must be selected before submitting")
	ErrSessionClosed        = NewDomainError("SESSION_CLOSED", "Allocation session has been closed")
	ErrLineItemNotFound     = NewDomainError("LINE_ITEM_NOT_FOUND", "Line item does not belong to this session")
	ErrInventoryNotResolved = NewDomainError("INVENTORY_NOT_RESOLVED", "Inventory item for this line item has not been resolved yet")
	ErrInvalidQuantity      = NewDomainError("INVALID_QUANTITY", "Requested quantity must be a non-negative number")
)

package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/erp/allocation/internal/domain/shared"
)

// AuditLogHandler writes an audit log entry for every allocation outcome.
// It subscribes to all allocation event types
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		allocation.EventTypeAllocationCompleted,
		allocation.EventTypeAllocationPartial,
		allocation.EventTypeAllocationFailed,
	}
}

// Handle logs the allocation outcome
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", e.EventID().String()),
		zap.String("session_id", e.AggregateID().String()),
	}

	switch ev := e.(type) {
	case *allocation.AllocationCompletedEvent:
		fields = append(fields,
			zap.String("order_id", ev.OrderID),
			zap.String("location_id", ev.LocationID),
			zap.Int("lines", len(ev.Lines)),
			zap.Int64("total_quantity", ev.TotalQty),
		)
		h.logger.Info("Allocation completed", fields...)
	case *allocation.AllocationPartialEvent:
		fields = append(fields,
			zap.String("order_id", ev.OrderID),
			zap.String("location_id", ev.LocationID),
			zap.Int("lines", len(ev.Lines)),
			zap.Int("failed_count", ev.FailedCount),
		)
		h.logger.Warn("Allocation partially failed", fields...)
	case *allocation.AllocationFailedEvent:
		fields = append(fields,
			zap.String("order_id", ev.OrderID),
			zap.String("location_id", ev.LocationID),
			zap.Int("lines", len(ev.Lines)),
		)
		h.logger.Error("Allocation failed", fields...)
	default:
		h.logger.Info("Allocation event", append(fields,
			zap.String("event_type", e.EventType()))...)
	}
	return nil
}

// Ensure AuditLogHandler implements EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)

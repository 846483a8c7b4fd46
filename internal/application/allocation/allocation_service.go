package allocation

import (
	"context"
	"sync"

	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/erp/allocation/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocationService drives the allocation flow for back-office operators:
// opening a session for an order, resolving per-line caps, and submitting the
// reservation batch to the upstream commerce platform.
type AllocationService struct {
	locations    allocation.StockLocationDirectory
	inventory    allocation.VariantInventoryQuery
	reservations allocation.ReservationCreator
	store        *SessionStore
	fulfillable  allocation.FulfillableQuantityFunc
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	locations allocation.StockLocationDirectory,
	inventory allocation.VariantInventoryQuery,
	reservations allocation.ReservationCreator,
	store *SessionStore,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		locations:    locations,
		inventory:    inventory,
		reservations: reservations,
		store:        store,
		fulfillable:  allocation.FulfillableQuantity,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for submission events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetFulfillableQuantityFunc overrides the fulfillable-remainder derivation
func (s *AllocationService) SetFulfillableQuantityFunc(fn allocation.FulfillableQuantityFunc) {
	if fn != nil {
		s.fulfillable = fn
	}
}

// OpenSession opens an allocation session for an order and resolves the
// inventory binding of every line item. A line whose variant inventory lookup
// fails stays unresolved; the operator can still allocate the other lines.
func (s *AllocationService) OpenSession(ctx context.Context, input OpenSessionInput) (*SessionView, error) {
	if input.Order.ID == "" || len(input.Order.Items) == 0 {
		return nil, shared.ErrInvalidInput
	}

	session := allocation.NewSession(input.Order, allocation.ReservedQuantities(input.Reservations), s.fulfillable)

	for _, item := range input.Order.Items {
		if err := session.MarkInventoryLoading(item.ID); err != nil {
			return nil, err
		}
		items, err := s.inventory.GetVariantInventory(ctx, item.VariantID)
		if err != nil {
			s.logger.Warn("variant inventory lookup failed",
				zap.String("order_id", input.Order.ID),
				zap.String("line_item_id", item.ID),
				zap.String("variant_id", item.VariantID),
				zap.Error(err),
			)
			continue
		}
		var canonical *allocation.InventoryItem
		if len(items) > 0 {
			// First inventory item is the canonical one for the variant.
			canonical = &items[0]
		}
		if err := session.BindInventory(item.ID, canonical); err != nil {
			return nil, err
		}
	}

	s.store.Put(session)
	view := s.buildView(session)
	return &view, nil
}

// GetSession returns the current session state with per-line caps resolved
// against the selected location.
func (s *AllocationService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	var view SessionView
	err := s.store.Do(sessionID, func(session *allocation.Session) error {
		view = s.buildView(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListLocations returns the selectable location options for the session's
// order, scoped to its sales channel when one is present.
func (s *AllocationService) ListLocations(ctx context.Context, sessionID uuid.UUID) ([]LocationOption, error) {
	var salesChannelID string
	if err := s.store.Do(sessionID, func(session *allocation.Session) error {
		salesChannelID = session.Order.SalesChannelID
		return nil
	}); err != nil {
		return nil, err
	}

	locations, err := s.locations.ListStockLocations(ctx, salesChannelID)
	if err != nil {
		return nil, err
	}
	options := make([]LocationOption, len(locations))
	for i, loc := range locations {
		options[i] = LocationOption{Value: loc.ID, Label: loc.Name}
	}
	return options, nil
}

// SelectLocation sets the session's active stock location. Entered quantities
// are kept; caps are recomputed against the new location on the next read.
func (s *AllocationService) SelectLocation(ctx context.Context, sessionID uuid.UUID, locationID string) (*SessionView, error) {
	var view SessionView
	err := s.store.Do(sessionID, func(session *allocation.Session) error {
		if err := session.SelectLocation(locationID); err != nil {
			return err
		}
		view = s.buildView(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SetQuantity stores the operator's requested quantity for one line item.
func (s *AllocationService) SetQuantity(ctx context.Context, sessionID uuid.UUID, lineItemID string, quantity int64) (*SessionView, error) {
	var view SessionView
	err := s.store.Do(sessionID, func(session *allocation.Session) error {
		if err := session.SetQuantity(lineItemID, quantity); err != nil {
			return err
		}
		view = s.buildView(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Submit issues one reservation-creation call per line item with a non-zero
// requested quantity, concurrently, and joins on all of them. Every call is
// attempted regardless of its peers' outcomes. Successful lines are marked
// allocated so a re-submission retries only the failed subset; failures are
// reported per line and logged, never fatal to the session.
func (s *AllocationService) Submit(ctx context.Context, sessionID uuid.UUID) (*SubmissionResult, error) {
	var result *SubmissionResult
	err := s.store.Do(sessionID, func(session *allocation.Session) error {
		batch, err := session.BuildSubmission()
		if err != nil {
			return err
		}

		result = &SubmissionResult{
			SessionID:  session.ID,
			OrderID:    session.Order.ID,
			LocationID: session.LocationID(),
			Lines:      make([]LineSubmissionResult, len(batch)),
		}
		if len(batch) == 0 {
			result.Status = SubmissionEmpty
			return nil
		}

		var wg sync.WaitGroup
		for i, req := range batch {
			wg.Add(1)
			go func(i int, req allocation.ReservationRequest) {
				defer wg.Done()
				line := LineSubmissionResult{
					LineItemID:      req.LineItemID,
					InventoryItemID: req.InventoryItemID,
					Quantity:        req.Quantity,
				}
				if err := s.reservations.CreateReservation(ctx, req); err != nil {
					line.ErrorMessage = err.Error()
				} else {
					line.Success = true
				}
				result.Lines[i] = line
			}(i, req)
		}
		wg.Wait()

		for _, line := range result.Lines {
			if line.Success {
				if err := session.MarkAllocated(line.LineItemID, line.Quantity); err != nil {
					return err
				}
				continue
			}
			s.logger.Error("reservation creation failed",
				zap.String("session_id", session.ID.String()),
				zap.String("order_id", session.Order.ID),
				zap.String("line_item_id", line.LineItemID),
				zap.Int64("quantity", line.Quantity),
				zap.String("error", line.ErrorMessage),
			)
		}

		failed := result.FailedCount()
		switch {
		case failed == 0:
			result.Status = SubmissionCompleted
		case failed == len(result.Lines):
			result.Status = SubmissionFailed
		default:
			result.Status = SubmissionPartial
		}

		s.publishResult(ctx, session, result, failed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CloseSession discards a session. In-flight submissions are not rolled back.
func (s *AllocationService) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	err := s.store.Do(sessionID, func(session *allocation.Session) error {
		session.Close()
		return nil
	})
	if err != nil {
		return err
	}
	s.store.Delete(sessionID)
	return nil
}

// publishResult emits the submission outcome as a domain event
func (s *AllocationService) publishResult(ctx context.Context, session *allocation.Session, result *SubmissionResult, failed int) {
	if s.publisher == nil {
		return
	}
	lines := make([]allocation.LineResultInfo, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = allocation.LineResultInfo{
			LineItemID:      line.LineItemID,
			InventoryItemID: line.InventoryItemID,
			Quantity:        line.Quantity,
			Success:         line.Success,
			ErrorMessage:    line.ErrorMessage,
		}
	}

	var event shared.DomainEvent
	switch result.Status {
	case SubmissionCompleted:
		event = allocation.NewAllocationCompletedEvent(session.ID, session.Order.ID, result.LocationID, lines)
	case SubmissionPartial:
		event = allocation.NewAllocationPartialEvent(session.ID, session.Order.ID, result.LocationID, lines, failed)
	case SubmissionFailed:
		event = allocation.NewAllocationFailedEvent(session.ID, session.Order.ID, result.LocationID, lines)
	default:
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.publisher.Publish(ctx, event)
}

// buildView assembles the operator-facing session state
func (s *AllocationService) buildView(session *allocation.Session) SessionView {
	view := SessionView{
		SessionID:      session.ID,
		OrderID:        session.Order.ID,
		SalesChannelID: session.Order.SalesChannelID,
		LocationID:     session.LocationID(),
		Items:          make([]LineItemView, 0, len(session.Order.Items)),
	}
	requests := session.Requests()
	for i, item := range session.Order.Items {
		req := requests[i]
		lineView := LineItemView{
			LineItemID:        item.ID,
			VariantID:         item.VariantID,
			Title:             item.Title,
			SKU:               item.SKU,
			OrderedQuantity:   item.OrderedQuantity,
			RequestedQuantity: req.Quantity,
			AllocatedQuantity: req.AllocatedQuantity,
			InventoryItemID:   req.InventoryItemID,
			BindingState:      string(req.State),
		}
		if lc, err := session.Capacity(item.ID); err == nil {
			lineView.EffectiveCap = lc.EffectiveCap
			lineView.AvailableQuantity = lc.AvailableQuantity
			lineView.StockedQuantity = lc.StockedQuantity
		}
		view.Items = append(view.Items, lineView)
	}
	return view
}

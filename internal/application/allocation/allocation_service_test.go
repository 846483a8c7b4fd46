package allocation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/erp/allocation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLocationDirectory struct {
	mu        sync.Mutex
	locations []allocation.StockLocation
	calls     []string
	err       error
}

func (f *fakeLocationDirectory) ListStockLocations(_ context.Context, salesChannelID string) ([]allocation.StockLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, salesChannelID)
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

type fakeInventoryQuery struct {
	mu    sync.Mutex
	items map[string][]allocation.InventoryItem
	errs  map[string]error
}

func (f *fakeInventoryQuery) GetVariantInventory(_ context.Context, variantID string) ([]allocation.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[variantID]; err != nil {
		return nil, err
	}
	return f.items[variantID], nil
}

type fakeReservationCreator struct {
	mu       sync.Mutex
	requests []allocation.ReservationRequest
	failFor  map[string]error // keyed by line item id
}

func (f *fakeReservationCreator) CreateReservation(_ context.Context, req allocation.ReservationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.failFor[req.LineItemID]; err != nil {
		return err
	}
	return nil
}

func (f *fakeReservationCreator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestService() (*AllocationService, *fakeLocationDirectory, *fakeInventoryQuery, *fakeReservationCreator) {
	locations := &fakeLocationDirectory{
		locations: []allocation.StockLocation{
			{ID: "loc_1", Name: "Main Warehouse"},
			{ID: "loc_2", Name: "Outlet"},
		},
	}
	inventory := &fakeInventoryQuery{
		items: map[string][]allocation.InventoryItem{
			"variant_1": {{
				ID: "iitem_1",
				LocationLevels: []allocation.LocationLevel{
					{LocationID: "loc_1", AvailableQuantity: 3, StockedQuantity: 10},
				},
			}},
			"variant_2": {{
				ID: "iitem_2",
				LocationLevels: []allocation.LocationLevel{
					{LocationID: "loc_1", AvailableQuantity: 4, StockedQuantity: 4},
				},
			}},
		},
		errs: map[string]error{},
	}
	reservations := &fakeReservationCreator{failFor: map[string]error{}}
	service := NewAllocationService(locations, inventory, reservations, NewSessionStore(0), zap.NewNop())
	return service, locations, inventory, reservations
}

func testInput() OpenSessionInput {
	return OpenSessionInput{
		Order: allocation.Order{
			ID:             "order_1",
			SalesChannelID: "sc_1",
			Items: []allocation.LineItem{
				{ID: "li_1", VariantID: "variant_1", OrderedQuantity: 5},
				{ID: "li_2", VariantID: "variant_2", OrderedQuantity: 2},
			},
		},
	}
}

func TestAllocationService_OpenSession(t *testing.T) {
	t.Run("resolves inventory bindings", func(t *testing.T) {
		service, _, _, _ := newTestService()

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)

		require.Len(t, view.Items, 2)
		assert.Equal(t, "RESOLVED", view.Items[0].BindingState)
		assert.Equal(t, "iitem_1", view.Items[0].InventoryItemID)
		assert.Equal(t, int64(0), view.Items[0].RequestedQuantity)
		// No location chosen yet: conservative zero cap, no display figures
		assert.Equal(t, int64(0), view.Items[0].EffectiveCap)
		assert.Nil(t, view.Items[0].AvailableQuantity)
	})

	t.Run("failed inventory lookup leaves line unresolved", func(t *testing.T) {
		service, _, inventory, _ := newTestService()
		inventory.errs["variant_2"] = errors.New("upstream unavailable")

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)

		assert.Equal(t, "RESOLVED", view.Items[0].BindingState)
		assert.Equal(t, "LOADING", view.Items[1].BindingState)
	})

	t.Run("variant without inventory stays unresolved", func(t *testing.T) {
		service, _, inventory, _ := newTestService()
		inventory.items["variant_2"] = nil

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)

		assert.Equal(t, "UNRESOLVED", view.Items[1].BindingState)
	})

	t.Run("existing reservations reduce the cap", func(t *testing.T) {
		service, _, _, _ := newTestService()
		input := testInput()
		input.Reservations = []allocation.ReservationRecord{
			{LineItemID: "li_1", LocationID: "loc_2", Quantity: 4},
		}

		view, err := service.OpenSession(context.Background(), input)
		require.NoError(t, err)

		view, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)
		// min(5 - 4 reserved, 3 available)
		assert.Equal(t, int64(1), view.Items[0].EffectiveCap)
	})

	t.Run("rejects order without items", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.OpenSession(context.Background(), OpenSessionInput{
			Order: allocation.Order{ID: "order_1"},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAllocationService_ListLocations(t *testing.T) {
	t.Run("scopes to the order's sales channel", func(t *testing.T) {
		service, locations, _, _ := newTestService()
		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)

		options, err := service.ListLocations(context.Background(), view.SessionID)
		require.NoError(t, err)

		assert.Equal(t, []LocationOption{
			{Value: "loc_1", Label: "Main Warehouse"},
			{Value: "loc_2", Label: "Outlet"},
		}, options)
		assert.Equal(t, []string{"sc_1"}, locations.calls)
	})

	t.Run("unscoped when the order has no sales channel", func(t *testing.T) {
		service, locations, _, _ := newTestService()
		input := testInput()
		input.Order.SalesChannelID = ""
		view, err := service.OpenSession(context.Background(), input)
		require.NoError(t, err)

		_, err = service.ListLocations(context.Background(), view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{""}, locations.calls)
	})

	t.Run("unknown session", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.ListLocations(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAllocationService_Submit(t *testing.T) {
	t.Run("no location selected issues zero calls", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)

		_, err = service.Submit(context.Background(), view.SessionID)
		assert.ErrorIs(t, err, shared.ErrNoLocationSelected)
		assert.Zero(t, reservations.callCount())

		// The session stays open for the operator to correct and retry
		_, err = service.GetSession(context.Background(), view.SessionID)
		assert.NoError(t, err)
	})

	t.Run("one call per non-zero line", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)
		_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_1", 3)
		require.NoError(t, err)

		result, err := service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionCompleted, result.Status)
		require.Equal(t, 1, reservations.callCount())
		assert.Equal(t, allocation.ReservationRequest{
			Quantity:        3,
			LineItemID:      "li_1",
			InventoryItemID: "iitem_1",
			LocationID:      "loc_1",
		}, reservations.requests[0])
	})

	t.Run("all lines zero is a no-op success", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)
		_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)

		result, err := service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionEmpty, result.Status)
		assert.Empty(t, result.Lines)
		assert.Zero(t, reservations.callCount())
	})

	t.Run("partial failure surfaces per-line results", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		reservations.failFor["li_2"] = errors.New("insufficient stock")

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)
		_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_1", 2)
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_2", 1)
		require.NoError(t, err)

		result, err := service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionPartial, result.Status)
		assert.Equal(t, 1, result.FailedCount())
		byLine := map[string]LineSubmissionResult{}
		for _, line := range result.Lines {
			byLine[line.LineItemID] = line
		}
		assert.True(t, byLine["li_1"].Success)
		assert.False(t, byLine["li_2"].Success)
		assert.Equal(t, "insufficient stock", byLine["li_2"].ErrorMessage)
	})

	t.Run("re-submission retries only the failed subset", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		reservations.failFor["li_2"] = errors.New("insufficient stock")

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)
		_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_1", 2)
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_2", 1)
		require.NoError(t, err)

		_, err = service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)
		require.Equal(t, 2, reservations.callCount())

		// Upstream recovers; only li_2 must be re-issued
		delete(reservations.failFor, "li_2")
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_2", 1)
		require.NoError(t, err)

		result, err := service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionCompleted, result.Status)
		require.Equal(t, 3, reservations.callCount())
		assert.Equal(t, "li_2", reservations.requests[2].LineItemID)
	})

	t.Run("total failure keeps session usable", func(t *testing.T) {
		service, _, _, reservations := newTestService()
		reservations.failFor["li_1"] = errors.New("network failure")

		view, err := service.OpenSession(context.Background(), testInput())
		require.NoError(t, err)
		_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
		require.NoError(t, err)
		_, err = service.SetQuantity(context.Background(), view.SessionID, "li_1", 1)
		require.NoError(t, err)

		result, err := service.Submit(context.Background(), view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, SubmissionFailed, result.Status)

		got, err := service.GetSession(context.Background(), view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Items[0].RequestedQuantity)
	})
}

type capturingHandler struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (h *capturingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *capturingHandler) EventTypes() []string { return nil }

type directPublisher struct {
	handler shared.EventHandler
}

func (p *directPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if err := p.handler.Handle(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func TestAllocationService_SubmissionEvents(t *testing.T) {
	service, _, _, reservations := newTestService()
	handler := &capturingHandler{}
	service.SetEventPublisher(&directPublisher{handler: handler})
	reservations.failFor["li_2"] = errors.New("insufficient stock")

	view, err := service.OpenSession(context.Background(), testInput())
	require.NoError(t, err)
	_, err = service.SelectLocation(context.Background(), view.SessionID, "loc_1")
	require.NoError(t, err)
	_, err = service.SetQuantity(context.Background(), view.SessionID, "li_1", 2)
	require.NoError(t, err)
	_, err = service.SetQuantity(context.Background(), view.SessionID, "li_2", 1)
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), view.SessionID)
	require.NoError(t, err)

	require.Len(t, handler.events, 1)
	assert.Equal(t, allocation.EventTypeAllocationPartial, handler.events[0].EventType())
}

func TestAllocationService_CloseSession(t *testing.T) {
	service, _, _, _ := newTestService()
	view, err := service.OpenSession(context.Background(), testInput())
	require.NoError(t, err)

	require.NoError(t, service.CloseSession(context.Background(), view.SessionID))

	_, err = service.GetSession(context.Background(), view.SessionID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

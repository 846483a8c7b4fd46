package allocation

import (
	"testing"

	"github.com/erp/allocation/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() Order {
	return Order{
		ID:             "order_1",
		SalesChannelID: "sc_1",
		Items: []LineItem{
			{ID: "li_1", VariantID: "variant_1", OrderedQuantity: 5},
			{ID: "li_2", VariantID: "variant_2", OrderedQuantity: 2},
		},
	}
}

func resolvedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(testOrder(), nil, nil)
	require.NoError(t, s.BindInventory("li_1", &InventoryItem{
		ID: "iitem_1",
		LocationLevels: []LocationLevel{
			{LocationID: "loc_1", AvailableQuantity: 3, StockedQuantity: 10},
		},
	}))
	require.NoError(t, s.BindInventory("li_2", &InventoryItem{
		ID: "iitem_2",
		LocationLevels: []LocationLevel{
			{LocationID: "loc_1", AvailableQuantity: 4, StockedQuantity: 4},
		},
	}))
	return s
}

func TestNewSession(t *testing.T) {
	s := NewSession(testOrder(), map[string]int64{"li_1": 2}, nil)

	require.Len(t, s.Requests(), 2)
	for _, req := range s.Requests() {
		assert.Equal(t, int64(0), req.Quantity)
		assert.Equal(t, BindingUnresolved, req.State)
		assert.Empty(t, req.InventoryItemID)
	}
	assert.Empty(t, s.LocationID())
	assert.False(t, s.Closed())
}

func TestSession_BindingLifecycle(t *testing.T) {
	t.Run("unresolved to loading to resolved", func(t *testing.T) {
		s := NewSession(testOrder(), nil, nil)

		require.NoError(t, s.MarkInventoryLoading("li_1"))
		assert.Equal(t, BindingLoading, s.Requests()[0].State)

		require.NoError(t, s.BindInventory("li_1", &InventoryItem{ID: "iitem_1"}))
		assert.Equal(t, BindingResolved, s.Requests()[0].State)
		assert.Equal(t, "iitem_1", s.Requests()[0].InventoryItemID)
	})

	t.Run("quantity input is non-functional until resolved", func(t *testing.T) {
		s := NewSession(testOrder(), nil, nil)

		err := s.SetQuantity("li_1", 1)
		assert.ErrorIs(t, err, shared.ErrInventoryNotResolved)
	})

	t.Run("variant without inventory record stays unresolved", func(t *testing.T) {
		s := NewSession(testOrder(), nil, nil)

		require.NoError(t, s.BindInventory("li_1", nil))
		assert.Equal(t, BindingUnresolved, s.Requests()[0].State)
	})

	t.Run("unknown line item", func(t *testing.T) {
		s := NewSession(testOrder(), nil, nil)

		assert.ErrorIs(t, s.BindInventory("li_x", &InventoryItem{ID: "i"}), shared.ErrLineItemNotFound)
		assert.ErrorIs(t, s.MarkInventoryLoading("li_x"), shared.ErrLineItemNotFound)
	})
}

func TestSession_SetQuantity(t *testing.T) {
	t.Run("stores requested quantity", func(t *testing.T) {
		s := resolvedSession(t)

		require.NoError(t, s.SetQuantity("li_1", 3))
		assert.Equal(t, int64(3), s.Requests()[0].Quantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		s := resolvedSession(t)

		assert.ErrorIs(t, s.SetQuantity("li_1", -1), shared.ErrInvalidQuantity)
	})

	t.Run("does not enforce the cap", func(t *testing.T) {
		// Upper-bound enforcement is a UI affordance; the authoritative
		// check happens upstream at reservation time.
		s := resolvedSession(t)
		require.NoError(t, s.SelectLocation("loc_1"))

		require.NoError(t, s.SetQuantity("li_1", 100))
		assert.Equal(t, int64(100), s.Requests()[0].Quantity)
	})

	t.Run("rejected after close", func(t *testing.T) {
		s := resolvedSession(t)
		s.Close()

		assert.ErrorIs(t, s.SetQuantity("li_1", 1), shared.ErrSessionClosed)
	})
}

func TestSession_SelectLocation(t *testing.T) {
	t.Run("changing location keeps entered quantities", func(t *testing.T) {
		s := resolvedSession(t)
		require.NoError(t, s.SelectLocation("loc_1"))
		require.NoError(t, s.SetQuantity("li_1", 3))

		require.NoError(t, s.SelectLocation("loc_other"))

		assert.Equal(t, int64(3), s.Requests()[0].Quantity)

		lc, err := s.Capacity("li_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), lc.EffectiveCap)
	})

	t.Run("rejects empty location", func(t *testing.T) {
		s := resolvedSession(t)

		assert.ErrorIs(t, s.SelectLocation(""), shared.ErrInvalidInput)
	})
}

func TestSession_Capacity(t *testing.T) {
	t.Run("no location selected yields zero cap", func(t *testing.T) {
		s := resolvedSession(t)

		lc, err := s.Capacity("li_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), lc.EffectiveCap)
	})

	t.Run("reflects location stock and reservations", func(t *testing.T) {
		s := NewSession(testOrder(), map[string]int64{"li_1": 1}, nil)
		require.NoError(t, s.BindInventory("li_1", &InventoryItem{
			ID: "iitem_1",
			LocationLevels: []LocationLevel{
				{LocationID: "loc_1", AvailableQuantity: 3, StockedQuantity: 10},
			},
		}))
		require.NoError(t, s.SelectLocation("loc_1"))

		lc, err := s.Capacity("li_1")
		require.NoError(t, err)
		// min(5 ordered - 1 reserved, 3 available)
		assert.Equal(t, int64(3), lc.EffectiveCap)
	})

	t.Run("custom fulfillable function", func(t *testing.T) {
		s := NewSession(testOrder(), nil, func(item LineItem) int64 { return 1 })
		require.NoError(t, s.BindInventory("li_1", &InventoryItem{
			ID: "iitem_1",
			LocationLevels: []LocationLevel{
				{LocationID: "loc_1", AvailableQuantity: 3, StockedQuantity: 10},
			},
		}))
		require.NoError(t, s.SelectLocation("loc_1"))

		lc, err := s.Capacity("li_1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), lc.EffectiveCap)
	})
}

func TestSession_BuildSubmission(t *testing.T) {
	t.Run("no location selected", func(t *testing.T) {
		s := resolvedSession(t)
		require.NoError(t, s.SetQuantity("li_1", 3))

		batch, err := s.BuildSubmission()
		assert.ErrorIs(t, err, shared.ErrNoLocationSelected)
		assert.Nil(t, batch)
	})

	t.Run("one request per line item with non-zero quantity", func(t *testing.T) {
		s := resolvedSession(t)
		require.NoError(t, s.SelectLocation("loc_1"))
		require.NoError(t, s.SetQuantity("li_1", 3))

		batch, err := s.BuildSubmission()
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, ReservationRequest{
			Quantity:        3,
			LineItemID:      "li_1",
			InventoryItemID: "iitem_1",
			LocationID:      "loc_1",
		}, batch[0])
	})

	t.Run("all lines zero yields empty batch", func(t *testing.T) {
		s := resolvedSession(t)
		require.NoError(t, s.SelectLocation("loc_1"))

		batch, err := s.BuildSubmission()
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("all requests target the selected location", func(t *testing.T) {
		s := resolvedSession(t)
		require.NoError(t, s.SelectLocation("loc_1"))
		require.NoError(t, s.SetQuantity("li_1", 2))
		require.NoError(t, s.SetQuantity("li_2", 1))

		batch, err := s.BuildSubmission()
		require.NoError(t, err)
		require.Len(t, batch, 2)
		for _, req := range batch {
			assert.Equal(t, "loc_1", req.LocationID)
		}
	})

	t.Run("rejected after close", func(t *testing.T) {
		s := resolvedSession(t)
		s.Close()

		_, err := s.BuildSubmission()
		assert.ErrorIs(t, err, shared.ErrSessionClosed)
	})
}

func TestSession_MarkAllocated(t *testing.T) {
	s := resolvedSession(t)
	require.NoError(t, s.SelectLocation("loc_1"))
	require.NoError(t, s.SetQuantity("li_1", 3))

	require.NoError(t, s.MarkAllocated("li_1", 3))

	// The line is settled: quantity reset, reservation reflected in the cap,
	// and a re-submission must not include it again.
	assert.Equal(t, int64(0), s.Requests()[0].Quantity)
	assert.Equal(t, int64(3), s.Requests()[0].AllocatedQuantity)

	lc, err := s.Capacity("li_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), lc.EffectiveCap)

	batch, err := s.BuildSubmission()
	require.NoError(t, err)
	assert.Empty(t, batch)
}

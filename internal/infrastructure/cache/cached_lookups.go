package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/erp/allocation/internal/domain/allocation"
)

// CachedLocationDirectory wraps a StockLocationDirectory with a TTL cache.
// Location lists change rarely, so short caching takes pressure off the
// upstream admin API when many sessions open at once.
type CachedLocationDirectory struct {
	inner  allocation.StockLocationDirectory
	store  LookupStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedLocationDirectory creates a caching wrapper around a location directory
func NewCachedLocationDirectory(inner allocation.StockLocationDirectory, store LookupStore, ttl time.Duration, logger *zap.Logger) *CachedLocationDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLocationDirectory{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// ListStockLocations returns cached locations for the sales channel, falling
// back to the upstream directory on a miss
func (d *CachedLocationDirectory) ListStockLocations(ctx context.Context, salesChannelID string) ([]allocation.StockLocation, error) {
	key := "locations:" + salesChannelID

	if data, ok, err := d.store.Get(ctx, key); err == nil && ok {
		var locations []allocation.StockLocation
		if json.Unmarshal(data, &locations) == nil {
			d.logger.Debug("Lookup cache hit for stock locations",
				zap.String("sales_channel_id", salesChannelID))
			return locations, nil
		}
		// Corrupt entry, drop it and fall through
		_ = d.store.Delete(ctx, key)
	}

	locations, err := d.inner.ListStockLocations(ctx, salesChannelID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(locations); err == nil {
		if err := d.store.Set(ctx, key, data, d.ttl); err != nil {
			d.logger.Warn("Failed to cache stock locations", zap.Error(err))
		}
	}

	return locations, nil
}

// CachedInventoryQuery wraps a VariantInventoryQuery with a TTL cache.
// Inventory levels move, so the TTL should stay short
type CachedInventoryQuery struct {
	inner  allocation.VariantInventoryQuery
	store  LookupStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedInventoryQuery creates a caching wrapper around an inventory query
func NewCachedInventoryQuery(inner allocation.VariantInventoryQuery, store LookupStore, ttl time.Duration, logger *zap.Logger) *CachedInventoryQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedInventoryQuery{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// GetVariantInventory returns cached inventory for the variant, falling back
// to the upstream query on a miss
func (q *CachedInventoryQuery) GetVariantInventory(ctx context.Context, variantID string) ([]allocation.InventoryItem, error) {
	key := "inventory:" + variantID

	if data, ok, err := q.store.Get(ctx, key); err == nil && ok {
		var items []allocation.InventoryItem
		if json.Unmarshal(data, &items) == nil {
			q.logger.Debug("Lookup cache hit for variant inventory",
				zap.String("variant_id", variantID))
			return items, nil
		}
		_ = q.store.Delete(ctx, key)
	}

	items, err := q.inner.GetVariantInventory(ctx, variantID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := q.store.Set(ctx, key, data, q.ttl); err != nil {
			q.logger.Warn("Failed to cache variant inventory", zap.Error(err))
		}
	}

	return items, nil
}

// Ensure the wrappers implement the domain ports
var (
	_ allocation.StockLocationDirectory = (*CachedLocationDirectory)(nil)
	_ allocation.VariantInventoryQuery  = (*CachedInventoryQuery)(nil)
)

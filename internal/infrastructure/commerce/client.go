package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/allocation/internal/domain/allocation"
)

// maxResponseSize is the maximum allowed response size from the admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors returned by the commerce client
var (
	ErrPlatformUnavailable   = errors.New("commerce: platform unavailable")
	ErrPlatformRequestFailed = errors.New("commerce: request failed")
)

// Client talks to the commerce platform's admin API. It implements the
// allocation domain's StockLocationDirectory, VariantInventoryQuery and
// ReservationCreator ports.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new commerce admin API client
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ListStockLocations fetches the stock locations available to a sales
// channel. An empty salesChannelID returns all locations.
func (c *Client) ListStockLocations(ctx context.Context, salesChannelID string) ([]allocation.StockLocation, error) {
	path := "/admin/stock-locations"
	if salesChannelID != "" {
		path += "?sales_channel_id=" + url.QueryEscape(salesChannelID)
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp stockLocationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("commerce: failed to parse stock locations response: %w", err)
	}

	locations := make([]allocation.StockLocation, 0, len(resp.StockLocations))
	for _, loc := range resp.StockLocations {
		locations = append(locations, allocation.StockLocation{
			ID:   loc.ID,
			Name: loc.Name,
		})
	}
	return locations, nil
}

// GetVariantInventory fetches the inventory items backing a product variant
// together with their per-location levels. Variants without managed
// inventory return an empty slice.
func (c *Client) GetVariantInventory(ctx context.Context, variantID string) ([]allocation.InventoryItem, error) {
	if variantID == "" {
		return nil, fmt.Errorf("%w: variant id is required", ErrPlatformRequestFailed)
	}

	path := "/admin/variants/" + url.PathEscape(variantID) + "/inventory"

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp variantInventoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("commerce: failed to parse variant inventory response: %w", err)
	}

	items := make([]allocation.InventoryItem, 0, len(resp.Variant.Inventory))
	for _, item := range resp.Variant.Inventory {
		levels := make([]allocation.LocationLevel, 0, len(item.LocationLevels))
		for _, level := range item.LocationLevels {
			levels = append(levels, allocation.LocationLevel{
				LocationID:        level.LocationID,
				AvailableQuantity: level.AvailableQuantity,
				StockedQuantity:   level.StockedQuantity,
			})
		}
		items = append(items, allocation.InventoryItem{
			ID:             item.ID,
			LocationLevels: levels,
		})
	}
	return items, nil
}

// CreateReservation posts a single reservation to the admin API
func (c *Client) CreateReservation(ctx context.Context, req allocation.ReservationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("commerce: failed to encode reservation: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/admin/reservations", payload)
	if err != nil {
		return err
	}

	var resp createReservationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("commerce: failed to parse reservation response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request against the admin API
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("commerce: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("commerce: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%w: HTTP %d: %s", ErrPlatformRequestFailed, resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrPlatformRequestFailed, resp.StatusCode)
	}

	return body, nil
}

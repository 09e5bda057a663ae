package refurbed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vedion/refurbed-sync/pkg/config"
	"github.com/vedion/refurbed-sync/pkg/httpx"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

const (
	listOrdersPath      = "/refb.merchant.v1.OrderService/ListOrders"
	updateItemStatePath = "/refb.merchant.v1.OrderService/UpdateOrderItemState"

	// MaxPageSize is the hard page limit the merchant API enforces.
	MaxPageSize = 100

	sortAscending  = "ASC"
	sortDescending = "DESC"
)

// excludedStates keeps terminal orders out of list responses; they carry no
// work for the sync pipeline.
var excludedStates = []string{OrderStateReturned, OrderStateCancelled}

// ClientParams configure the marketplace client.
type ClientParams struct {
	Config config.RefurbedConfig
	Logger *logger.Logger
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client calls the marketplace merchant API.
type Client struct {
	http *httpx.Client
}

func NewClient(params ClientParams) (*Client, error) {
	if params.Config.Token == "" {
		return nil, fmt.Errorf("marketplace token required")
	}
	httpClient, err := httpx.New(httpx.Params{
		ServiceName: "refurbed",
		BaseURL:     params.Config.BaseURL,
		Timeout:     params.Config.Timeout,
		Headers:     map[string]string{"Authorization": "Plain " + params.Config.Token},
		Logger:      params.Logger,
		HTTPClient:  params.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient}, nil
}

// ListSince returns up to limit orders with ids after the cursor, oldest
// first, excluding terminal states. An empty cursor starts from the oldest
// order the API will serve.
func (c *Client) ListSince(ctx context.Context, cursor string, limit int) ([]Order, error) {
	req := listOrdersRequest{
		Filter:     &listFilter{State: &stateFilter{NoneOf: excludedStates}},
		Pagination: &pagination{Limit: clampLimit(limit), StartingAfter: cursor},
		Sort:       &sortInstruction{Field: "id", Order: sortAscending},
	}
	return c.list(ctx, req)
}

// ListLatest returns the newest n orders, newest first, excluding terminal
// states.
func (c *Client) ListLatest(ctx context.Context, n int) ([]Order, error) {
	req := listOrdersRequest{
		Filter:     &listFilter{State: &stateFilter{NoneOf: excludedStates}},
		Pagination: &pagination{Limit: clampLimit(n)},
		Sort:       &sortInstruction{Field: "id", Order: sortDescending},
	}
	return c.list(ctx, req)
}

// ListByIDs returns full detail for an explicit id set.
func (c *Client) ListByIDs(ctx context.Context, ids []string) ([]Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	req := listOrdersRequest{
		Filter:     &listFilter{ID: &idFilter{AnyOf: ids}},
		Pagination: &pagination{Limit: clampLimit(len(ids))},
		Sort:       &sortInstruction{Field: "id", Order: sortAscending},
	}
	return c.list(ctx, req)
}

func (c *Client) list(ctx context.Context, req listOrdersRequest) ([]Order, error) {
	var resp listOrdersResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, listOrdersPath, req, &resp); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return resp.Orders, nil
}

// UpdateItemState requests an order-item state transition, optionally with
// a parcel tracking URL.
func (c *Client) UpdateItemState(ctx context.Context, itemID, state, trackingURL string) error {
	req := updateItemStateRequest{ID: itemID, State: state, ParcelTrackingURL: trackingURL}
	if err := c.http.DoJSON(ctx, http.MethodPost, updateItemStatePath, req, nil); err != nil {
		return fmt.Errorf("updating item %s state: %w", itemID, err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// TrackingURL renders the carrier tracking link attached to SHIPPED
// transitions.
func TrackingURL(trackingNumber string) string {
	return "https://www.ups.com/track?loc=en_GB&trackingNumber=" + trackingNumber
}

// ReleasedDate returns the calendar date portion of an order's release
// timestamp.
func ReleasedDate(releasedAt string) string {
	if t, err := time.Parse(time.RFC3339, releasedAt); err == nil {
		return t.Format("2006-01-02")
	}
	// Fall back to cutting at the time separator for non-RFC3339 payloads.
	for i, r := range releasedAt {
		if r == 'T' {
			return releasedAt[:i]
		}
	}
	return releasedAt
}

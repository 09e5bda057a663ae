package idosell

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vedion/refurbed-sync/pkg/config"
	"github.com/vedion/refurbed-sync/pkg/errors"
	"github.com/vedion/refurbed-sync/pkg/httpx"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

const (
	ordersPath         = "/orders/orders"
	productsPath       = "/products/products"
	paymentsPath       = "/payments/payments"
	paymentConfirmPath = "/payments/confirm"

	// advanceAccount is the bank account advance payments are booked
	// against.
	advanceAccount = "PL54249000050000460097455936"
	advanceFormID  = 1
)

// ClientParams configure the ERP client.
type ClientParams struct {
	Config config.IdoSellConfig
	Logger *logger.Logger
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client calls the ERP admin API.
type Client struct {
	http *httpx.Client
}

func NewClient(params ClientParams) (*Client, error) {
	if params.Config.APIKey == "" {
		return nil, fmt.Errorf("erp api key required")
	}
	httpClient, err := httpx.New(httpx.Params{
		ServiceName: "idosell",
		BaseURL:     params.Config.BaseURL,
		Timeout:     params.Config.Timeout,
		Headers:     map[string]string{"X-API-KEY": params.Config.APIKey},
		Logger:      params.Logger,
		HTTPClient:  params.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient}, nil
}

// CreateOrder submits an order-creation document and returns the ERP-assigned
// serial number.
func (c *Client) CreateOrder(ctx context.Context, order Order) (string, error) {
	req := createOrdersRequest{Params: createOrdersParams{Orders: []Order{order}}}
	var resp createOrdersResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, ordersPath, req, &resp); err != nil {
		return "", fmt.Errorf("creating order: %w", err)
	}
	results := resp.Results.OrdersResults
	if len(results) == 0 {
		return "", errors.New(errors.CodeDataShape, "order creation response carried no results")
	}
	serial := results[0].OrderSerialNumber.String()
	if serial == "" {
		return "", errors.New(errors.CodeDataShape, "order creation response carried no serial number")
	}
	return serial, nil
}

// EditOrder updates the status and note of an existing order.
func (c *Client) EditOrder(ctx context.Context, serial, status, note string) error {
	var req editOrdersRequest
	req.Params.Orders = []editOrder{{
		OrderSerialNumber: json.Number(serial),
		OrderStatus:       status,
		OrderNote:         note,
	}}
	if err := c.http.DoJSON(ctx, http.MethodPut, ordersPath, req, nil); err != nil {
		return fmt.Errorf("editing order %s: %w", serial, err)
	}
	return nil
}

// GetOrderStatus returns the current status and tracking id for one order.
func (c *Client) GetOrderStatus(ctx context.Context, serial string) (OrderStatus, error) {
	path := ordersPath + "?ordersSerialNumbers=" + url.QueryEscape(serial)
	var resp getOrdersResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return OrderStatus{}, fmt.Errorf("fetching order %s: %w", serial, err)
	}
	if len(resp.Results) == 0 {
		return OrderStatus{}, errors.New(errors.CodeNotFound, "order "+serial+" not found in erp")
	}
	details := resp.Results[0].OrderDetails
	return OrderStatus{
		Status:     details.OrderStatus,
		TrackingID: details.Dispatch.DeliveryPackageID,
	}, nil
}

// GetBundle fetches a product's bundle composition. A plain product yields
// an empty bundle, which is not an error.
func (c *Client) GetBundle(ctx context.Context, productID string) (Bundle, error) {
	path := productsPath + "?productIds=" + url.QueryEscape(productID)
	var resp productsResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Bundle{}, fmt.Errorf("fetching product %s: %w", productID, err)
	}
	if len(resp.Results) == 0 {
		return Bundle{}, errors.New(errors.CodeNotFound, "product "+productID+" not found in erp")
	}

	var bundle Bundle
	for _, item := range resp.Results[0].ProductBundleItems {
		bundle.Items = append(bundle.Items, BundleItem{
			ProductID: item.ProductID,
			SizeID:    SizeUniversal,
		})
		if item.IsBundleShown {
			bundle.MotherID = item.ProductID.String()
		}
	}
	return bundle, nil
}

// AddPayment books an advance payment covering the order total.
func (c *Client) AddPayment(ctx context.Context, serial, value string) error {
	var req addPaymentRequest
	req.Params.SourceType = "order"
	req.Params.SourceID = json.Number(serial)
	req.Params.Value = value
	req.Params.Account = advanceAccount
	req.Params.Type = "advance"
	req.Params.PaymentFormID = advanceFormID
	if err := c.http.DoJSON(ctx, http.MethodPost, paymentsPath, req, nil); err != nil {
		return fmt.Errorf("adding payment to order %s: %w", serial, err)
	}
	return nil
}

// ConfirmPayment confirms the first payment on an order.
func (c *Client) ConfirmPayment(ctx context.Context, serial string) error {
	var req confirmPaymentRequest
	req.Params.SourceType = "order"
	req.Params.PaymentNumber = serial + "-1"
	if err := c.http.DoJSON(ctx, http.MethodPut, paymentConfirmPath, req, nil); err != nil {
		return fmt.Errorf("confirming payment on order %s: %w", serial, err)
	}
	return nil
}

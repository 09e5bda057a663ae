package idosell

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vedion/refurbed-sync/pkg/config"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(ClientParams{
		Config: config.IdoSellConfig{APIKey: "key-123", BaseURL: server.URL},
		Logger: logger.New(logger.Options{ServiceName: "idosell-test", Level: zerolog.Disabled}),
	})
	require.NoError(t, err)
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func TestCreateOrderExtractsSerial(t *testing.T) {
	var gotKey, gotMethod string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		gotMethod = r.Method
		payload = decodeBody(t, r)
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(`{"results":{"ordersResults":[{"orderSerialNumber":555}]}}`))
	}))
	defer server.Close()

	order := Order{
		CurrencyID:      "EUR",
		BillingCurrency: "EUR",
		PurchaseDate:    "2024-03-05",
		StockID:         "3",
		Products: []ProductLine{{
			ProductID:             "4502",
			SizeID:                SizeUniversal,
			Quantity:              1,
			QuantityOperationType: "add",
			RetailPrice:           "499.00",
			VAT:                   "19",
		}},
		ClientNoteToOrder: "[refurbed-api-id:999]",
	}
	serial, err := newTestClient(t, server).CreateOrder(context.Background(), order)
	require.NoError(t, err)
	require.Equal(t, "555", serial)

	require.Equal(t, "key-123", gotKey)
	require.Equal(t, http.MethodPost, gotMethod)

	orders := payload["params"].(map[string]any)["orders"].([]any)
	require.Len(t, orders, 1)
	sent := orders[0].(map[string]any)
	require.Equal(t, "EUR", sent["currencyId"])
	require.Equal(t, "[refurbed-api-id:999]", sent["clientNoteToOrder"])
	product := sent["products"].([]any)[0].(map[string]any)
	require.Equal(t, "4502", product["productId"])
	require.Equal(t, "uniw", product["sizeId"])
	require.Equal(t, "19", product["productVat"])
}

func TestCreateOrderRejectsEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"ordersResults":[]}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).CreateOrder(context.Background(), Order{})
	require.Error(t, err)
}

func TestEditOrderSendsSerialAsNumber(t *testing.T) {
	var gotMethod string
	var raw []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(t, server).EditOrder(context.Background(), "555", StatusWaitForPackaging, "note")
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Contains(t, string(raw), `"orderSerialNumber":555`)
	require.Contains(t, string(raw), `"orderStatus":"wait_for_packaging"`)
}

func TestGetOrderStatus(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"Results":[{"orderDetails":{"orderStatus":"finished","dispatch":{"deliveryPackageId":"1Z999"}}}]}`))
	}))
	defer server.Close()

	status, err := newTestClient(t, server).GetOrderStatus(context.Background(), "555")
	require.NoError(t, err)
	require.Equal(t, "ordersSerialNumbers=555", gotQuery)
	require.Equal(t, StatusFinished, status.Status)
	require.Equal(t, "1Z999", status.TrackingID)
}

func TestGetOrderStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).GetOrderStatus(context.Background(), "555")
	require.Error(t, err)
}

func TestGetBundle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "productIds=4502", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"results":[{"productBundleItems":[
			{"productId":101,"isBundleShown":false},
			{"productId":102,"isBundleShown":true}
		]}]}`))
	}))
	defer server.Close()

	bundle, err := newTestClient(t, server).GetBundle(context.Background(), "4502")
	require.NoError(t, err)
	require.Len(t, bundle.Items, 2)
	require.Equal(t, "102", bundle.MotherID)
	require.Equal(t, SizeUniversal, bundle.Items[0].SizeID)
}

func TestGetBundlePlainProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"productBundleItems":[]}]}`))
	}))
	defer server.Close()

	bundle, err := newTestClient(t, server).GetBundle(context.Background(), "17")
	require.NoError(t, err)
	require.Empty(t, bundle.Items)
	require.Empty(t, bundle.MotherID)
}

func TestAddPayment(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/payments", r.URL.Path)
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(t, server).AddPayment(context.Background(), "555", "499.00")
	require.NoError(t, err)

	params := payload["params"].(map[string]any)
	require.Equal(t, "order", params["sourceType"])
	require.Equal(t, float64(555), params["sourceId"])
	require.Equal(t, "499.00", params["value"])
	require.Equal(t, "advance", params["type"])
	require.Equal(t, float64(1), params["paymentFormId"])

	settings := payload["settings"].(map[string]any)
	require.Equal(t, false, settings["sendMail"])
	require.Equal(t, false, settings["sendSms"])
}

func TestConfirmPayment(t *testing.T) {
	var gotMethod string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/confirm", r.URL.Path)
		gotMethod = r.Method
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(t, server).ConfirmPayment(context.Background(), "555")
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "555-1", payload["params"].(map[string]any)["paymentNumber"])
}

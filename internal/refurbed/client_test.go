package refurbed

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
		Config: config.RefurbedConfig{Token: "secret-token", BaseURL: server.URL},
		Logger: logger.New(logger.Options{ServiceName: "refurbed-test", Level: zerolog.Disabled}),
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

func TestListSincePayload(t *testing.T) {
	var gotPath, gotAuth string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"orders":[{"id":"339071","state":"NEW"}]}`))
	}))
	defer server.Close()

	orders, err := newTestClient(t, server).ListSince(context.Background(), "339000", 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "339071", orders[0].ID)

	require.Equal(t, "/refb.merchant.v1.OrderService/ListOrders", gotPath)
	require.Equal(t, "Plain secret-token", gotAuth)

	filter := payload["filter"].(map[string]any)
	noneOf := filter["state"].(map[string]any)["none_of"].([]any)
	require.ElementsMatch(t, []any{"RETURNED", "CANCELLED"}, noneOf)

	page := payload["pagination"].(map[string]any)
	require.Equal(t, float64(100), page["limit"])
	require.Equal(t, "339000", page["starting_after"])

	sort := payload["sort"].(map[string]any)
	require.Equal(t, "id", sort["field"])
	require.Equal(t, "ASC", sort["order"])
}

func TestListLatestSortsDescendingWithoutCursor(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"orders":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ListLatest(context.Background(), 20)
	require.NoError(t, err)

	page := payload["pagination"].(map[string]any)
	require.Equal(t, float64(20), page["limit"])
	_, hasCursor := page["starting_after"]
	require.False(t, hasCursor, "latest fetch must not carry a cursor")

	sort := payload["sort"].(map[string]any)
	require.Equal(t, "DESC", sort["order"])
}

func TestListByIDsFiltersByIDSet(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"orders":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ListByIDs(context.Background(), []string{"1", "2"})
	require.NoError(t, err)

	filter := payload["filter"].(map[string]any)
	anyOf := filter["id"].(map[string]any)["any_of"].([]any)
	require.Equal(t, []any{"1", "2"}, anyOf)
	_, hasState := filter["state"]
	require.False(t, hasState, "id fetch must not filter by state")
}

func TestListByIDsEmptySetSkipsCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty id set")
	}))
	defer server.Close()

	orders, err := newTestClient(t, server).ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, orders)
}

func TestUpdateItemState(t *testing.T) {
	var gotPath string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		payload = decodeBody(t, r)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(t, server).UpdateItemState(context.Background(), "item-7", ItemStateShipped, TrackingURL("1Z999"))
	require.NoError(t, err)

	require.Equal(t, "/refb.merchant.v1.OrderService/UpdateOrderItemState", gotPath)
	require.Equal(t, "item-7", payload["id"])
	require.Equal(t, "SHIPPED", payload["state"])
	require.Equal(t, "https://www.ups.com/track?loc=en_GB&trackingNumber=1Z999", payload["parcel_tracking_url"])
}

func TestListErrorsSurfaceStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ListLatest(context.Background(), 10)
	require.Error(t, err)
}

func TestReleasedDate(t *testing.T) {
	require.Equal(t, "2024-03-05", ReleasedDate("2024-03-05T10:11:12Z"))
	require.Equal(t, "2024-03-05", ReleasedDate("2024-03-05T10:11:12.345678+01:00"))
	require.Equal(t, "2024-03-05", ReleasedDate("2024-03-05"))
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, MaxPageSize, clampLimit(0))
	require.Equal(t, MaxPageSize, clampLimit(500))
	require.Equal(t, 25, clampLimit(25))
}

package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invsblmen/pos-bengkel/internal/domain/order"
	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

func TestDecodeCreatePurchase(t *testing.T) {
	req, err := decodeCreatePurchase([]byte(`{
		"supplier_id": "s1",
		"items": [{"part_id": "p1", "quantity": 2, "unit_price": "1500.50"}],
		"discount": {"mode": "percent", "value": 12.345},
		"tax": 100,
		"notes": "rush",
		"unknown": [1, 2]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", req.SupplierID)
	assert.Equal(t, "rush", req.Notes)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "p1", req.Items[0].PartID)
	assert.Equal(t, 2, req.Items[0].Quantity)
	require.NotNil(t, req.Items[0].UnitPrice)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(*req.Items[0].UnitPrice))
	assert.Equal(t, pricing.ModePercent, req.Discount.Mode)
	assert.True(t, decimal.RequireFromString("12.345").Equal(req.Discount.Value))
	assert.Equal(t, pricing.ModeFixed, req.Tax.Mode)
}

func TestDecodeQuote(t *testing.T) {
	req, err := decodeQuote([]byte(`{"items": [{"service_id": "svc", "parts": [{"part_id": "p1", "quantity": 1}]}]}`))
	require.NoError(t, err)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "svc", req.Items[0].ServiceID)
	require.Len(t, req.Items[0].Parts, 1)
	assert.Equal(t, "p1", req.Items[0].Parts[0].PartID)
}

func TestDecodeCreateServiceOrder(t *testing.T) {
	req, err := decodeCreateServiceOrder([]byte(`{"vehicle_id": "v1", "customer_id": "c1", "odometer_km": 1200, "items": [{"service_id": "svc"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "v1", req.VehicleID)
	assert.Equal(t, "c1", req.CustomerID)
	require.NotNil(t, req.OdometerKm)
	assert.Equal(t, 1200, *req.OdometerKm)
}

func TestDecodeUpdatePurchase_Status(t *testing.T) {
	req, err := decodeUpdatePurchase([]byte(`{"status": "received", "notes": "ok"}`))
	require.NoError(t, err)
	require.NotNil(t, req.Status)
	assert.Equal(t, order.PurchaseReceived, *req.Status)
	require.NotNil(t, req.Notes)
	assert.Equal(t, "ok", *req.Notes)

	for _, body := range []string{`{"status": "RECEIVED"}`, `{"status": "bogus"}`, `{"status": ""}`} {
		_, err := decodeUpdatePurchase([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestDecodeUpdateServiceOrder_Status(t *testing.T) {
	req, err := decodeUpdateServiceOrder([]byte(`{"status": "in_progress", "odometer_km": null}`))
	require.NoError(t, err)
	require.NotNil(t, req.Status)
	assert.Equal(t, order.ServiceInProgress, *req.Status)
	assert.Nil(t, req.OdometerKm)

	for _, body := range []string{`{"status": "Paid"}`, `{"status": "done"}`} {
		_, err := decodeUpdateServiceOrder([]byte(body))
		assert.Error(t, err, body)
	}
}

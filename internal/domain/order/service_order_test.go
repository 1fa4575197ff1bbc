package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

func newServiceOrder(status ServiceStatus) ServiceOrder {
	return ServiceOrder{
		ID:        "so-1",
		VehicleID: "veh-1",
		Status:    status,
		Items: []ServiceItem{
			{
				ServiceID: "svc-oil",
				Price:     decimal.NewFromInt(30000),
				Parts: []ServicePart{
					{PartID: "oil-1l", Quantity: 2, UnitPrice: decimal.NewFromInt(50000)},
				},
			},
		},
	}
}

func TestServiceStatus_Table(t *testing.T) {
	all := []ServiceStatus{ServicePending, ServiceInProgress, ServiceCompleted, ServicePaid, ServiceCancelled}

	for _, from := range all {
		for _, to := range all {
			want := from != ServicePaid && from != ServiceCancelled
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, ServicePaid.Terminal())
	assert.True(t, ServiceCancelled.Terminal())
	assert.True(t, ServiceCompleted.Editable())
	assert.True(t, ServicePaid.RequiresOdometer())
	assert.False(t, ServiceInProgress.RequiresOdometer())
	assert.False(t, ServicePending.CanTransitionTo("archived"))
}

func TestDecideService_CompleteRegression(t *testing.T) {
	_, err := DecideService(newServiceOrder(ServiceInProgress), ServiceUpdate{
		Status:     ptr(ServiceCompleted),
		OdometerKm: ptr(4),
	}, 10)

	var reg *OdometerRegressionError
	require.ErrorAs(t, err, &reg)
	assert.Equal(t, 4, reg.Provided)
	assert.Equal(t, 10, reg.PriorMax)
}

func TestDecideService_CompleteRequiresOdometer(t *testing.T) {
	_, err := DecideService(newServiceOrder(ServicePending), ServiceUpdate{Status: ptr(ServiceCompleted)}, 0)

	var missing *MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "odometer_km", missing.Field)
}

func TestDecideService_StoredOdometerBelowPrior(t *testing.T) {
	current := newServiceOrder(ServiceCompleted)
	current.OdometerKm = ptr(900)

	_, err := DecideService(current, ServiceUpdate{Status: ptr(ServicePaid)}, 1000)

	var reg *OdometerRegressionError
	require.ErrorAs(t, err, &reg)
}

func TestDecideService_SkipToCompleted(t *testing.T) {
	d, err := DecideService(newServiceOrder(ServicePending), ServiceUpdate{
		Status:     ptr(ServiceCompleted),
		OdometerKm: ptr(10),
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, ServiceCompleted, d.Order.Status)
	require.NotNil(t, d.RecordOdometerKm)
	assert.Equal(t, 10, *d.RecordOdometerKm)
	assert.True(t, d.StatusChanged())
}

func TestDecideService_TerminalRejects(t *testing.T) {
	for _, status := range []ServiceStatus{ServicePaid, ServiceCancelled} {
		t.Run(string(status), func(t *testing.T) {
			_, err := DecideService(newServiceOrder(status), ServiceUpdate{Status: ptr(ServicePending)}, 0)
			var illegal *IllegalTransitionError
			require.ErrorAs(t, err, &illegal)

			_, err = DecideService(newServiceOrder(status), ServiceUpdate{Notes: ptr("late note")}, 0)
			var locked *LockedError
			require.ErrorAs(t, err, &locked)
		})
	}
}

func TestDecideService_OdometerEditChecked(t *testing.T) {
	_, err := DecideService(newServiceOrder(ServicePending), ServiceUpdate{OdometerKm: ptr(50)}, 60)
	var reg *OdometerRegressionError
	require.ErrorAs(t, err, &reg)

	d, err := DecideService(newServiceOrder(ServicePending), ServiceUpdate{OdometerKm: ptr(70)}, 60)
	require.NoError(t, err)
	assert.Equal(t, 70, *d.Order.OdometerKm)
	assert.Nil(t, d.RecordOdometerKm)
}

func TestDecideService_CancelFromAnyOpenStatus(t *testing.T) {
	for _, status := range []ServiceStatus{ServicePending, ServiceInProgress, ServiceCompleted} {
		d, err := DecideService(newServiceOrder(status), ServiceUpdate{Status: ptr(ServiceCancelled)}, 0)
		require.NoError(t, err, status)
		assert.Equal(t, ServiceCancelled, d.Order.Status)
		assert.Nil(t, d.RecordOdometerKm)
	}
}

func TestDecideService_InvalidPartQuantity(t *testing.T) {
	items := []ServiceItem{{
		ServiceID: "svc",
		Price:     decimal.NewFromInt(1000),
		Parts:     []ServicePart{{PartID: "p", Quantity: 0, UnitPrice: decimal.NewFromInt(10)}},
	}}

	_, err := DecideService(newServiceOrder(ServicePending), ServiceUpdate{Items: items}, 0)

	var lineErr *pricing.InvalidLineItemError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 1, lineErr.Index)
}

func TestServiceItem_Value(t *testing.T) {
	item := ServiceItem{
		ServiceID: "svc-tuneup",
		Price:     decimal.NewFromInt(80000),
		Discount:  pricing.Percent(25),
		Parts: []ServicePart{
			{PartID: "plug", Quantity: 2, UnitPrice: decimal.NewFromInt(20000), Discount: pricing.Fixed(5000)},
			{PartID: "filter", Quantity: 1, UnitPrice: decimal.NewFromInt(35000)},
		},
	}

	v := item.Value()

	assert.True(t, decimal.NewFromInt(60000).Equal(v.Service.Total))
	require.Len(t, v.Parts, 2)
	assert.True(t, decimal.NewFromInt(35000).Equal(v.Parts[0].Total))
	assert.True(t, decimal.NewFromInt(35000).Equal(v.Parts[1].Total))
	assert.True(t, decimal.NewFromInt(130000).Equal(v.Total))
}

func TestServiceOrder_Totals(t *testing.T) {
	o := newServiceOrder(ServicePending)
	o.Discount = pricing.Fixed(10000)
	o.Tax = pricing.Percent(10)

	totals := o.Totals()

	assert.True(t, decimal.NewFromInt(130000).Equal(totals.ItemsSubtotal))
	assert.True(t, decimal.NewFromInt(120000).Equal(totals.AfterDiscount))
	assert.True(t, decimal.NewFromInt(12000).Equal(totals.TaxAmount))
	assert.True(t, decimal.NewFromInt(132000).Equal(totals.GrandTotal))
}

package service

import (
	"context"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOrigin = model.Address{Name: "Chargepoint GmbH", Street1: "Werkstr. 5", City: "Hamburg", Zip: "20095", Country: "DE"}
	testDest   = model.Address{Name: "Jo", Street1: "Hauptstr. 1", City: "Berlin", Zip: "10115", Country: "DE"}
)

func testParcel() model.Parcel {
	return model.Parcel{
		Length: decimal.NewFromInt(40),
		Width:  decimal.NewFromInt(30),
		Height: decimal.NewFromInt(20),
		Weight: decimal.RequireFromString("4.5"),
	}
}

func intPtr(v int) *int { return &v }

func newShippingFixture(shippo *mockShippoClient) (ShippingService, *memoryRateCache) {
	cache := &memoryRateCache{}
	return NewShippingService(shippo, cache, ShippingSettings{
		Origin:   testOrigin,
		Currency: "EUR",
		CacheTTL: time.Minute,
	}), cache
}

func TestQuote_NormalizesAndSorts(t *testing.T) {
	shippo := &mockShippoClient{
		configured: true,
		resp: &client.ShipmentResponse{Rates: &[]client.ShippoRate{
			{Provider: "UPS", Amount: "12.40", Currency: "EUR", ServiceLevel: client.ShippoServiceLevel{Name: "Standard", Token: "ups_standard"}},
			{Provider: "DHL", Amount: "7.90", Currency: "EUR", EstimatedDays: intPtr(2), ServiceLevel: client.ShippoServiceLevel{Name: "Paket", Token: "dhl_paket"}},
			{Provider: "USPS", Amount: "9.00", Currency: "USD"},
			{Provider: "Hermes", Amount: "n/a", Currency: "EUR"},
		}},
	}
	svc, cache := newShippingFixture(shippo)

	rates, err := svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
	require.NoError(t, err)

	require.Len(t, rates, 2)
	assert.Equal(t, "DHL", rates[0].Provider)
	assert.Equal(t, model.Money(790), rates[0].Amount)
	assert.Equal(t, 2, *rates[0].EstimatedDays)
	assert.Equal(t, "UPS", rates[1].Provider)

	require.Len(t, shippo.requests, 1)
	req := shippo.requests[0]
	assert.Equal(t, "Hamburg", req.AddressFrom.City)
	assert.Equal(t, "4.5", req.Parcels[0].Weight)
	assert.Equal(t, "cm", req.Parcels[0].DistanceUnit)
	assert.Equal(t, "kg", req.Parcels[0].MassUnit)

	// a second identical request is served from the cache
	_, err = svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
	require.NoError(t, err)
	assert.Len(t, shippo.requests, 1)
	assert.Len(t, cache.entries, 1)
}

func TestQuote_ValidatesBeforeCallingCarrier(t *testing.T) {
	badParcel := testParcel()
	badParcel.Weight = decimal.Zero

	tests := []struct {
		name    string
		to      model.Address
		parcels []model.Parcel
		wantErr error
	}{
		{"incomplete destination", model.Address{Name: "Jo", Country: "DE"}, []model.Parcel{testParcel()}, ErrInvalidAddress},
		{"no parcels", testDest, nil, ErrInvalidParcel},
		{"zero weight", testDest, []model.Parcel{badParcel}, ErrInvalidParcel},
		{"bad unit", testDest, []model.Parcel{{Length: decimal.NewFromInt(1), Width: decimal.NewFromInt(1), Height: decimal.NewFromInt(1), Weight: decimal.NewFromInt(1), MassUnit: "stone"}}, ErrInvalidParcel},
		{"too many parcels", testDest, make([]model.Parcel, model.MaxParcels+1), ErrInvalidParcel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shippo := &mockShippoClient{configured: true}
			svc, _ := newShippingFixture(shippo)

			_, err := svc.Quote(context.Background(), tt.to, tt.parcels)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, shippo.requests)
		})
	}
}

func TestQuote_ConfigurationAndUpstreamErrors(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		shippo := &mockShippoClient{configured: false}
		svc, _ := newShippingFixture(shippo)
		_, err := svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("incomplete origin", func(t *testing.T) {
		shippo := &mockShippoClient{configured: true}
		svc := NewShippingService(shippo, &memoryRateCache{}, ShippingSettings{Currency: "EUR"})
		_, err := svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Empty(t, shippo.requests)
	})

	t.Run("carrier error", func(t *testing.T) {
		shippo := &mockShippoClient{configured: true, err: fmt.Errorf("shippo: %w", client.ErrUpstream)}
		svc, _ := newShippingFixture(shippo)
		_, err := svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
		assert.ErrorIs(t, err, ErrShippingUpstream)
	})

	t.Run("breaker open", func(t *testing.T) {
		shippo := &mockShippoClient{configured: true, err: fmt.Errorf("shippo: %w", client.ErrUnavailable)}
		svc, _ := newShippingFixture(shippo)
		_, err := svc.Quote(context.Background(), testDest, []model.Parcel{testParcel()})
		assert.ErrorIs(t, err, ErrShippingUnavailable)
	})
}

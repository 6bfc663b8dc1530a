package client

import (
	"context"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/config"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShippo(t *testing.T, token string, h http.HandlerFunc) ShippoClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewShippoClient(&config.Shippo{APIToken: token, APIURL: srv.URL, Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestShippoClient_CreateShipment(t *testing.T) {
	c := newTestShippo(t, "shippo_test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shipments/", r.URL.Path)
		assert.Equal(t, "ShippoToken shippo_test", r.Header.Get("Authorization"))

		var req ShipmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Berlin", req.AddressTo.City)
		assert.Equal(t, "kg", req.Parcels[0].MassUnit)

		_, _ = w.Write([]byte(`{"object_id":"shp_1","status":"SUCCESS","rates":[
			{"object_id":"r1","provider":"DHL","amount":"7.90","currency":"EUR","estimated_days":2,"servicelevel":{"name":"Paket","token":"dhl_paket"}}
		]}`))
	})

	resp, err := c.CreateShipment(context.Background(), &ShipmentRequest{
		AddressTo: ShippoAddress{City: "Berlin"},
		Parcels:   []ShippoParcel{{MassUnit: "kg"}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Rates)
	require.Len(t, *resp.Rates, 1)
	assert.Equal(t, "dhl_paket", (*resp.Rates)[0].ServiceLevel.Token)
	assert.Equal(t, 2, *(*resp.Rates)[0].EstimatedDays)
}

func TestShippoClient_Errors(t *testing.T) {
	t.Run("missing rates array", func(t *testing.T) {
		c := newTestShippo(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"object_id":"shp_1","status":"ERROR"}`))
		})
		_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("non-2xx", func(t *testing.T) {
		c := newTestShippo(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("no token never calls upstream", func(t *testing.T) {
		c := newTestShippo(t, "", func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected upstream call")
		})
		assert.False(t, c.Configured())
		_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestShippoClient_RejectedRequestsKeepBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	c := newTestShippo(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"address_to":["invalid"]}`))
	})

	for i := 0; i < 10; i++ {
		_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
		assert.ErrorIs(t, err, ErrRejected)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(10), calls.Load())
}

func TestShippoClient_ServerErrorsOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestShippo(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 5; i++ {
		_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
		assert.NotErrorIs(t, err, ErrRejected)
	}

	_, err := c.CreateShipment(context.Background(), &ShipmentRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), calls.Load())
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   int
		rejected bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnprocessableEntity, true},
		{http.StatusConflict, true},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
	}
	for _, tt := range tests {
		err := statusError("shippo", tt.status, []byte("body"))
		assert.ErrorIs(t, err, ErrUpstream, tt.status)
		assert.Equal(t, tt.rejected, errors.Is(err, ErrRejected), tt.status)
	}
}

package client

import (
	"context"
	"evcharge-storefront/internal/config"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCMS(t *testing.T, h http.HandlerFunc) CMSClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCMSClient(&config.CMS{URL: srv.URL + "/", Token: "cms-token", Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestCMSClient_Get(t *testing.T) {
	c := newTestCMS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "Bearer cms-token", r.Header.Get("Authorization"))
		assert.Equal(t, "42", r.URL.Query().Get("filters[id][$eq]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":42,"title":"Wallbox"}]}`))
	})

	var out struct {
		Data []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	q := url.Values{}
	q.Set("filters[id][$eq]", "42")

	require.NoError(t, c.Get(context.Background(), "/api/products", q, &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "Wallbox", out.Data[0].Title)
}

func TestCMSClient_Errors(t *testing.T) {
	t.Run("404 is not found", func(t *testing.T) {
		c := newTestCMS(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		err := c.Get(context.Background(), "/api/products", nil, &struct{}{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("5xx is upstream and trips the breaker", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestCMS(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})

		for i := 0; i < 5; i++ {
			err := c.Get(context.Background(), "/api/products", nil, &struct{}{})
			assert.ErrorIs(t, err, ErrUpstream)
		}

		err := c.Get(context.Background(), "/api/products", nil, &struct{}{})
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("4xx is rejected and leaves the breaker closed", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestCMS(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		})

		for i := 0; i < 8; i++ {
			err := c.Get(context.Background(), "/api/products", nil, &struct{}{})
			assert.ErrorIs(t, err, ErrRejected)
			assert.NotErrorIs(t, err, ErrUnavailable)
		}
		assert.Equal(t, int32(8), calls.Load())
	})

	t.Run("missing url is a configuration error", func(t *testing.T) {
		c := NewCMSClient(&config.CMS{}, zerolog.Nop())
		err := c.Get(context.Background(), "/api/products", nil, &struct{}{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestCMSClient_MediaURL(t *testing.T) {
	c := NewCMSClient(&config.CMS{URL: "https://cms.example.com"}, zerolog.Nop())

	assert.Equal(t, "https://cms.example.com/uploads/a.png", c.MediaURL("/uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", c.MediaURL("https://cdn.example.com/a.png"))
	assert.Empty(t, c.MediaURL(""))
}

package client

import (
	"context"
	"encoding/json"
	"evcharge-storefront/internal/config"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "emails"))
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Order confirmation", body["subject"])
		assert.Equal(t, "jo@example.com", body["reply_to"])

		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	c, err := NewResendClient(&config.Resend{APIKey: "re_test"}, srv.URL+"/")
	require.NoError(t, err)

	id, err := c.Send(context.Background(), &EmailMessage{
		From:    "shop@example.com",
		To:      []string{"jo@example.com"},
		ReplyTo: "jo@example.com",
		Subject: "Order confirmation",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "email_123", id)
}

func TestResendClient_NotConfigured(t *testing.T) {
	c, err := NewResendClient(&config.Resend{}, "")
	require.NoError(t, err)

	_, err = c.Send(context.Background(), &EmailMessage{To: []string{"a@b.c"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

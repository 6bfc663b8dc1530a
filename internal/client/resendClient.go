package client

import (
	"context"
	"evcharge-storefront/internal/config"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/resend/resend-go/v2"
)

type EmailClient interface {
	Send(ctx context.Context, msg *EmailMessage) (string, error)
}

type EmailMessage struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type resendClientImpl struct {
	client *resend.Client
}

// NewResendClient builds the transactional email client. baseURL is only
// set when pointing at a test server.
func NewResendClient(cfg *config.Resend, baseURL string) (EmailClient, error) {
	if cfg.APIKey == "" {
		return &resendClientImpl{}, nil
	}

	c := resend.NewCustomClient(cleanhttp.DefaultPooledClient(), cfg.APIKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		c.BaseURL = u
	}

	return &resendClientImpl{client: c}, nil
}

func (c *resendClientImpl) Send(ctx context.Context, msg *EmailMessage) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("resend api key: %w", ErrNotConfigured)
	}

	resp, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("%w: resend send: %w", ErrUpstream, err)
	}

	return resp.Id, nil
}

package client

import (
	"context"
	"encoding/json"
	"evcharge-storefront/internal/config"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// CMSClient reads collections from the headless CMS REST API.
type CMSClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	// MediaURL turns a CMS media path into an absolute URL.
	MediaURL(ref string) string
}

type cmsClientImpl struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewCMSClient(cfg *config.CMS, log zerolog.Logger) CMSClient {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	return &cmsClientImpl{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		breaker:    newBreaker("cms", log),
	}
}

func (c *cmsClientImpl) Get(ctx context.Context, path string, query url.Values, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("cms url: %w", ErrNotConfigured)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint)
	})
	if err != nil {
		return breakerError(err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode cms response: %w", ErrUpstream, err)
	}
	return nil
}

func (c *cmsClientImpl) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cms request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read cms response: %w", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, statusError("cms", resp.StatusCode, body)
	}

	return body, nil
}

func (c *cmsClientImpl) MediaURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

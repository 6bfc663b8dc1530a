package client

import (
	"bytes"
	"context"
	"encoding/json"
	"evcharge-storefront/internal/config"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type ShippoClient interface {
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	Configured() bool
}

type ShippoAddress struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type ShippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type ShipmentRequest struct {
	AddressFrom ShippoAddress  `json:"address_from"`
	AddressTo   ShippoAddress  `json:"address_to"`
	Parcels     []ShippoParcel `json:"parcels"`
	Async       bool           `json:"async"`
}

type ShippoServiceLevel struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

type ShippoRate struct {
	ObjectID      string             `json:"object_id"`
	Provider      string             `json:"provider"`
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	EstimatedDays *int               `json:"estimated_days"`
	DurationTerms string             `json:"duration_terms"`
	ServiceLevel  ShippoServiceLevel `json:"servicelevel"`
}

type ShippoMessage struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type ShipmentResponse struct {
	ObjectID string          `json:"object_id"`
	Status   string          `json:"status"`
	Rates    *[]ShippoRate   `json:"rates"`
	Messages []ShippoMessage `json:"messages"`
}

type shippoClientImpl struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewShippoClient(cfg *config.Shippo, log zerolog.Logger) ShippoClient {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	return &shippoClientImpl{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		token:      cfg.APIToken,
		breaker:    newBreaker("shippo", log),
	}
}

func (c *shippoClientImpl) Configured() bool {
	return c.token != ""
}

func (c *shippoClientImpl) CreateShipment(ctx context.Context, shipment *ShipmentRequest) (*ShipmentResponse, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("shippo api token: %w", ErrNotConfigured)
	}

	payload, err := json.Marshal(shipment)
	if err != nil {
		return nil, fmt.Errorf("marshal shipment: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, "/shipments/", payload)
	})
	if err != nil {
		return nil, breakerError(err)
	}

	var result ShipmentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode shippo response: %w", ErrUpstream, err)
	}
	if result.Rates == nil {
		return nil, fmt.Errorf("%w: shippo response has no rates", ErrUpstream)
	}

	return &result, nil
}

func (c *shippoClientImpl) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "ShippoToken "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: shippo request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read shippo response: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("shippo", resp.StatusCode, body)
	}

	return body, nil
}

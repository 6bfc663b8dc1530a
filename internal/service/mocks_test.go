package service

import (
	"context"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/config"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDB(config.Database{
		Driver: "sqlite",
		URL:    "file:" + filepath.Join(t.TempDir(), "orders.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// mockProductRepository serves products from a map.
type mockProductRepository struct {
	products map[int64]*model.Product
	errs     map[int64]error
	// returned overrides the record served for a requested id
	returned map[int64]*model.Product
	manyErr  error
	calls    atomic.Int32
	batches  atomic.Int32
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	m.calls.Add(1)
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	if p, ok := m.returned[id]; ok {
		return p, nil
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

// FindMany leaves out ids with a configured error, the way the repository
// skips records it cannot convert.
func (m *mockProductRepository) FindMany(ctx context.Context, ids []int64) ([]*model.Product, error) {
	m.batches.Add(1)
	if m.manyErr != nil {
		return nil, m.manyErr
	}
	var out []*model.Product
	for _, id := range ids {
		if _, ok := m.errs[id]; ok {
			continue
		}
		if p, ok := m.returned[id]; ok {
			out = append(out, p)
			continue
		}
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	page := &model.ProductPage{Pagination: model.Pagination{Page: q.Page, PageSize: q.PageSize}}
	for _, p := range m.products {
		page.Products = append(page.Products, p)
	}
	page.Pagination.Total = len(page.Products)
	return page, nil
}

type mockPaymentClient struct {
	mu       sync.Mutex
	sessions map[string]*client.CheckoutSession
	getErr   error
	created  []*client.CheckoutSessionRequest
	createFn func(req *client.CheckoutSessionRequest) (*client.CheckoutSession, error)
	event    *client.PaymentEvent
	parseErr error
	gets     atomic.Int32
}

func (m *mockPaymentClient) CreateCheckoutSession(ctx context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(req)
	}
	return &client.CheckoutSession{ID: "cs_new", URL: "https://checkout.stripe.com/c/cs_new"}, nil
}

func (m *mockPaymentClient) GetCheckoutSession(ctx context.Context, sessionID string) (*client.CheckoutSession, error) {
	m.gets.Add(1)
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, client.ErrNotFound
}

func (m *mockPaymentClient) ParseWebhook(payload []byte, signature string) (*client.PaymentEvent, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return m.event, nil
}

// spyOrderRepository counts calls into a real repository. When readGate is
// set, the first gatedReads lookups by session id each wait for the others
// before returning.
type spyOrderRepository struct {
	repository.OrderRepository
	creates    atomic.Int32
	reads      atomic.Int32
	readGate   *sync.WaitGroup
	gatedReads int32
}

func (s *spyOrderRepository) CreateWithLines(ctx context.Context, order *model.Order, lines []model.OrderLine) error {
	s.creates.Add(1)
	return s.OrderRepository.CreateWithLines(ctx, order, lines)
}

func (s *spyOrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	n := s.reads.Add(1)
	order, err := s.OrderRepository.FindBySessionID(ctx, sessionID)
	if s.readGate != nil && n <= s.gatedReads {
		s.readGate.Done()
		s.readGate.Wait()
	}
	return order, err
}

type mockNotifier struct {
	mu        sync.Mutex
	confirmed []string
	contacts  []model.ContactMessage
	err       error
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, order *model.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if order.UserEmail == "" {
		return "", ErrMissingRecipient
	}
	m.confirmed = append(m.confirmed, order.OrderNumber)
	return "email_" + order.OrderNumber, nil
}

func (m *mockNotifier) SendContactMessage(ctx context.Context, msg model.ContactMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, msg)
	return "email_contact", m.err
}

type mockPublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.messages == nil {
		m.messages = map[string][]byte{}
	}
	m.messages[string(key)] = value
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockEmailClient struct {
	sent []*client.EmailMessage
	err  error
}

func (m *mockEmailClient) Send(ctx context.Context, msg *client.EmailMessage) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "email_1", nil
}

type mockShippoClient struct {
	configured bool
	resp       *client.ShipmentResponse
	err        error
	requests   []*client.ShipmentRequest
}

func (m *mockShippoClient) Configured() bool { return m.configured }

func (m *mockShippoClient) CreateShipment(ctx context.Context, req *client.ShipmentRequest) (*client.ShipmentResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockPromotionRepository struct {
	promotions map[string]*model.Promotion
	err        error
}

func (m *mockPromotionRepository) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.promotions[code]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

type memoryRateCache struct {
	entries map[string][]model.RateQuote
}

func (m *memoryRateCache) Get(ctx context.Context, key string) ([]model.RateQuote, bool, error) {
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *memoryRateCache) Set(ctx context.Context, key string, rates []model.RateQuote, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = map[string][]model.RateQuote{}
	}
	m.entries[key] = rates
	return nil
}

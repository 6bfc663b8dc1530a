package handler

import (
	"context"
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/middleware"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/service"
	"evcharge-storefront/internal/validation"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type testValidator struct{ v *validator.Validate }

func (t *testValidator) Validate(i any) error { return t.v.Struct(i) }

// newContext builds an echo context for a JSON request. A non-empty userID
// marks the request as authenticated.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &testValidator{v: validation.New()}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		middleware.SetIdentity(c, middleware.Identity{UserID: userID, Email: userID + "@example.com"})
	}
	return c, rec
}

type fakeCheckoutService struct {
	got  service.CheckoutInput
	sess *model.PaymentSession
	err  error
}

func (f *fakeCheckoutService) Checkout(ctx context.Context, in service.CheckoutInput) (*model.PaymentSession, error) {
	f.got = in
	return f.sess, f.err
}

type fakeOrderService struct {
	commitIn    service.CommitInput
	result      *service.CommitResult
	orders      []*model.Order
	order       *model.Order
	emailID     string
	err         error
	bySession   string
	forUser     string
	resendCalls int
}

func (f *fakeOrderService) Commit(ctx context.Context, in service.CommitInput) (*service.CommitResult, error) {
	f.commitIn = in
	return f.result, f.err
}

func (f *fakeOrderService) ListForUser(ctx context.Context, userID string) ([]*model.Order, error) {
	f.forUser = userID
	return f.orders, f.err
}

func (f *fakeOrderService) GetBySession(ctx context.Context, userID, sessionID string) (*model.Order, error) {
	f.forUser, f.bySession = userID, sessionID
	return f.order, f.err
}

func (f *fakeOrderService) ResendConfirmation(ctx context.Context, sessionID string) (string, error) {
	f.resendCalls++
	f.bySession = sessionID
	return f.emailID, f.err
}

type fakeCatalogService struct {
	query   model.ProductQuery
	page    *model.ProductPage
	product *model.Product
	err     error
}

func (f *fakeCatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) ListProducts(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	f.query = q
	return f.page, f.err
}

func (f *fakeCatalogService) ResolveLines(ctx context.Context, items []cart.Item) ([]model.PricedLine, []cart.Dropped) {
	return nil, nil
}

type fakeShippingService struct {
	to      model.Address
	parcels []model.Parcel
	rates   []model.RateQuote
	err     error
}

func (f *fakeShippingService) Quote(ctx context.Context, to model.Address, parcels []model.Parcel) ([]model.RateQuote, error) {
	f.to, f.parcels = to, parcels
	return f.rates, f.err
}

type fakeNotificationService struct {
	contact model.ContactMessage
	err     error
}

func (f *fakeNotificationService) SendOrderConfirmation(ctx context.Context, order *model.Order) (string, error) {
	return "email_order", f.err
}

func (f *fakeNotificationService) SendContactMessage(ctx context.Context, msg model.ContactMessage) (string, error) {
	f.contact = msg
	return "email_contact", f.err
}

type fakePromotionService struct {
	applied *service.AppliedPromotion
	err     error
}

func (f *fakePromotionService) Resolve(ctx context.Context, code string, subtotal model.Money) (*service.AppliedPromotion, error) {
	return f.applied, f.err
}

type fakeWebhookService struct {
	payload   []byte
	signature string
	err       error
}

func (f *fakeWebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	f.payload, f.signature = payload, signature
	return f.err
}

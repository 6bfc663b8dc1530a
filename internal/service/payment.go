package service

import (
	"context"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"strings"
)

// stripe rejects metadata values longer than this
const maxMetadataValue = 500

type SessionOptions struct {
	UserID string
	Email  string
	Cart   []cart.Item
}

type PaymentService interface {
	CreateSession(ctx context.Context, lines []model.PricedLine, opts SessionOptions) (*model.PaymentSession, error)
	VerifySession(ctx context.Context, sessionID string) (*model.SessionVerification, error)
}

type PaymentSettings struct {
	Currency         string
	ShippingPrice    model.Money
	ShippingCarrier  string
	AllowedCountries []string
	BaseURL          string
}

type paymentServiceImpl struct {
	paymentClient client.PaymentClient
	settings      PaymentSettings
}

func NewPaymentService(paymentClient client.PaymentClient, settings PaymentSettings) PaymentService {
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &paymentServiceImpl{
		paymentClient: paymentClient,
		settings:      settings,
	}
}

func (s *paymentServiceImpl) CreateSession(ctx context.Context, lines []model.PricedLine, opts SessionOptions) (*model.PaymentSession, error) {
	req := &client.CheckoutSessionRequest{
		Currency:          s.settings.Currency,
		ShippingAmount:    s.settings.ShippingPrice.Cents(),
		ShippingName:      s.settings.ShippingCarrier,
		AllowedCountries:  s.settings.AllowedCountries,
		CustomerEmail:     opts.Email,
		ClientReferenceID: opts.UserID,
		SuccessURL:        s.settings.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.settings.BaseURL + "/cart",
		Metadata:          map[string]string{},
	}

	for _, l := range lines {
		req.LineItems = append(req.LineItems, client.CheckoutLineItem{
			Title:      l.Product.Title,
			UnitAmount: l.Product.Price.Cents(),
			Quantity:   int64(l.Quantity),
			ImageURL:   l.Product.BannerImage,
		})
	}

	if opts.UserID != "" {
		req.Metadata["user_id"] = opts.UserID
	}
	if cartJSON, err := json.Marshal(opts.Cart); err == nil && len(opts.Cart) > 0 && len(cartJSON) <= maxMetadataValue {
		req.Metadata["cart"] = string(cartJSON)
	}

	sess, err := s.paymentClient.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, ErrPaymentUpstream.Wrap(err)
	}

	return &model.PaymentSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *paymentServiceImpl) VerifySession(ctx context.Context, sessionID string) (*model.SessionVerification, error) {
	sess, err := s.paymentClient.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, ErrInvalidSession.Wrap(err)
		}
		return nil, ErrPaymentUpstream.Wrap(err)
	}

	return &model.SessionVerification{
		SessionID:       sess.ID,
		Paid:            sess.PaymentStatus == "paid",
		Status:          sess.Status,
		PaymentStatus:   sess.PaymentStatus,
		CustomerEmail:   sess.CustomerEmail,
		PaymentIntentID: sess.PaymentIntentID,
		AmountTotal:     model.Money(sess.AmountTotal),
		Currency:        sess.Currency,
	}, nil
}

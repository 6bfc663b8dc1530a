package service

import (
	"context"
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/model"
	"strings"

	"github.com/rs/zerolog"
)

type CheckoutInput struct {
	Items  []cart.Line
	UserID string
	Email  string
}

type CheckoutService interface {
	// Checkout prices the submitted items from the catalog and opens a
	// hosted payment session for them.
	Checkout(ctx context.Context, in CheckoutInput) (*model.PaymentSession, error)
}

type checkoutServiceImpl struct {
	catalog CatalogService
	payment PaymentService
}

func NewCheckoutService(catalog CatalogService, payment PaymentService) CheckoutService {
	return &checkoutServiceImpl{catalog: catalog, payment: payment}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, in CheckoutInput) (*model.PaymentSession, error) {
	c, dropped := cart.Normalize(in.Items)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if len(dropped) > 0 {
		return nil, ErrInvalidItems.WithMessage("Invalid cart items: " + droppedRefs(dropped))
	}

	lines, unresolved := s.catalog.ResolveLines(ctx, c.Items())
	for _, d := range unresolved {
		if d.Reason == cart.ReasonLookupFailed {
			return nil, ErrCatalogLookup
		}
	}
	if len(unresolved) > 0 {
		return nil, ErrInvalidItems.WithMessage("Unavailable cart items: " + droppedRefs(unresolved))
	}
	subtotal, err := model.Subtotal(lines)
	if err != nil {
		return nil, ErrInvalidItems.WithMessage("Cart total is out of range").Wrap(err)
	}

	sess, err := s.payment.CreateSession(ctx, lines, SessionOptions{
		UserID: in.UserID,
		Email:  in.Email,
		Cart:   c.Items(),
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", sess.ID).
		Int("lines", len(lines)).
		Str("subtotal", subtotal.String()).
		Msg("checkout session created")

	return sess, nil
}

func droppedRefs(dropped []cart.Dropped) string {
	refs := make([]string, len(dropped))
	for i, d := range dropped {
		refs[i] = d.Ref
	}
	return strings.Join(refs, ", ")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// afterCommitTimeout bounds the confirmation email and event publish that
// follow a commit.
const afterCommitTimeout = 15 * time.Second

type CommitInput struct {
	UserID          string
	UserEmail       string
	SessionID       string
	Cart            []cart.Line
	ShippingAddress model.Address
	BillingAddress  model.Address
}

type CommitResult struct {
	Order   *model.Order
	Dropped []cart.Dropped
}

type OrderService interface {
	Commit(ctx context.Context, in CommitInput) (*CommitResult, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Order, error)
	GetBySession(ctx context.Context, userID, sessionID string) (*model.Order, error)
	ResendConfirmation(ctx context.Context, sessionID string) (string, error)
}

type OrderSettings struct {
	Currency        string
	ShippingPrice   model.Money
	ShippingCarrier string
}

type orderServiceImpl struct {
	payment   PaymentService
	catalog   CatalogService
	orders    repository.OrderRepository
	notifier  NotificationService
	publisher client.EventPublisher
	settings  OrderSettings

	newOrderNumber func() string
}

func NewOrderService(
	payment PaymentService,
	catalog CatalogService,
	orders repository.OrderRepository,
	notifier NotificationService,
	publisher client.EventPublisher,
	settings OrderSettings,
) OrderService {
	return &orderServiceImpl{
		payment:        payment,
		catalog:        catalog,
		orders:         orders,
		notifier:       notifier,
		publisher:      publisher,
		settings:       settings,
		newOrderNumber: newOrderNumber,
	}
}

func (s *orderServiceImpl) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	log := zerolog.Ctx(ctx)

	if in.UserID == "" {
		return nil, ErrUnauthenticated
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	// an empty cart never reaches payment or persistence
	c, dropped := cart.Normalize(in.Cart)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	verification, err := s.payment.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !verification.Paid {
		return nil, ErrPaymentNotConfirmed
	}
	if !verification.Complete() {
		return nil, ErrSessionIncomplete
	}

	existing, err := s.orders.FindBySessionID(ctx, sessionID)
	if err == nil && existing != nil {
		return nil, ErrDuplicateOrder
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPersistenceFailed.Wrap(err)
	}

	priced, unresolved := s.catalog.ResolveLines(ctx, c.Items())
	dropped = append(dropped, unresolved...)
	if len(priced) == 0 {
		return nil, ErrLineResolutionFailed
	}

	lines := make([]model.OrderLine, len(priced))
	for i, p := range priced {
		lines[i] = model.OrderLine{
			ProductID: p.Product.ID,
			Title:     p.Product.Title,
			Quantity:  p.Quantity,
			UnitPrice: p.Product.Price,
		}
	}
	subtotal, err := model.Subtotal(priced)
	if err != nil {
		return nil, ErrLineResolutionFailed.Wrap(err)
	}

	email := firstNonEmpty(in.UserEmail, verification.CustomerEmail)
	order := &model.Order{
		OrderNumber:     s.newOrderNumber(),
		UserID:          in.UserID,
		UserEmail:       email,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		ShippingMethod: model.ShippingMethod{
			Carrier: s.settings.ShippingCarrier,
			Price:   s.settings.ShippingPrice,
		},
		Subtotal:        subtotal,
		Total:           subtotal + s.settings.ShippingPrice,
		Currency:        strings.ToLower(s.settings.Currency),
		Status:          model.OrderStatusPaid,
		StripeSessionID: sessionID,
		PaymentIntentID: verification.PaymentIntentID,
	}

	if err := s.orders.CreateWithLines(ctx, order, lines); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, ErrDuplicateOrder.Wrap(err)
		}
		return nil, ErrPersistenceFailed.Wrap(err)
	}

	if verification.AmountTotal != 0 && verification.AmountTotal != order.Total {
		log.Warn().
			Str("order_number", order.OrderNumber).
			Str("order_total", order.Total.String()).
			Str("charged_total", verification.AmountTotal.String()).
			Msg("order total differs from charged amount")
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.String()).
		Int("lines", len(lines)).
		Int("dropped", len(dropped)).
		Msg("order committed")

	s.afterCommit(ctx, order)

	return &CommitResult{Order: order, Dropped: dropped}, nil
}

// afterCommit sends the confirmation and publishes the committed event.
// Failures are logged only.
func (s *orderServiceImpl) afterCommit(ctx context.Context, order *model.Order) {
	log := zerolog.Ctx(ctx).With().Str("order_number", order.OrderNumber).Logger()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()

	if order.UserEmail != "" {
		if _, err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			log.Error().Err(err).Msg("send order confirmation")
		}
	}

	body, err := json.Marshal(model.NewOrderCommittedEvent(order))
	if err != nil {
		log.Error().Err(err).Msg("marshal order event")
		return
	}
	if err := s.publisher.Publish(ctx, []byte(order.OrderNumber), body); err != nil {
		log.Error().Err(err).Msg("publish order event")
	}
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, userID string) ([]*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	orders, err := s.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrPersistenceFailed.WithMessage("Could not load orders").Wrap(err)
	}
	return orders, nil
}

func (s *orderServiceImpl) GetBySession(ctx context.Context, userID, sessionID string) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	order, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, ErrPersistenceFailed.WithMessage("Could not load order").Wrap(err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderServiceImpl) ResendConfirmation(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrMissingSession
	}

	order, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrOrderNotFound
		}
		return "", ErrPersistenceFailed.WithMessage("Could not load order").Wrap(err)
	}

	return s.notifier.SendOrderConfirmation(ctx, order)
}

func newOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:16])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

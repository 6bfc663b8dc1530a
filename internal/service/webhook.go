package service

import (
	"context"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"fmt"

	"github.com/rs/zerolog"
)

type WebhookService interface {
	Handle(ctx context.Context, payload []byte, signature string) error
}

type webhookServiceImpl struct {
	paymentClient    client.PaymentClient
	orders           repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewWebhookService(
	paymentClient client.PaymentClient,
	orders repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
) WebhookService {
	return &webhookServiceImpl{
		paymentClient:    paymentClient,
		orders:           orders,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *webhookServiceImpl) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := s.paymentClient.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, client.ErrNotConfigured) {
			return ErrWebhookNotConfig.Wrap(err)
		}
		return ErrInvalidWebhook.Wrap(err)
	}

	log := zerolog.Ctx(ctx).With().Str("event_id", event.ID).Str("event_type", event.Type).Logger()

	processed, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		log.Info().Msg("webhook event already processed")
		return nil
	}

	switch event.Type {
	case "charge.refunded":
		if err := s.markRefunded(ctx, log, event.PaymentIntentID); err != nil {
			return err
		}
	default:
		log.Info().Msg("webhook event acknowledged")
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

func (s *webhookServiceImpl) markRefunded(ctx context.Context, log zerolog.Logger, paymentIntentID string) error {
	if paymentIntentID == "" {
		log.Warn().Msg("refund event without payment intent")
		return nil
	}

	order, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn().Str("payment_intent_id", paymentIntentID).Msg("refund for unknown order")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find order by payment intent: %w", err)
	}

	changed, err := s.orders.UpdateStatus(ctx, order.ID, model.StatusesAllowing(model.OrderStatusRefunded), model.OrderStatusRefunded)
	if err != nil {
		return fmt.Errorf("mark order refunded: %w", err)
	}

	log.Info().Str("order_number", order.OrderNumber).Bool("changed", changed).Msg("order refunded")
	return nil
}

package service

import (
	"context"
	"errors"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"strings"
	"time"
)

type AppliedPromotion struct {
	Code      string
	Reduction model.Money
}

type PromotionService interface {
	Resolve(ctx context.Context, code string, subtotal model.Money) (*AppliedPromotion, error)
}

type promotionServiceImpl struct {
	promotions repository.PromotionRepository
	now        func() time.Time
}

func NewPromotionService(promotions repository.PromotionRepository) PromotionService {
	return &promotionServiceImpl{promotions: promotions, now: time.Now}
}

func (s *promotionServiceImpl) Resolve(ctx context.Context, code string, subtotal model.Money) (*AppliedPromotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrPromotionNotFound
	}
	if subtotal < 0 {
		return nil, ErrInvalidQuery.WithMessage("Subtotal must not be negative")
	}

	promo, err := s.promotions.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidRecord) {
			return nil, ErrPromotionNotFound.Wrap(err)
		}
		return nil, catalogError(err)
	}

	if !promo.Applicable(s.now()) {
		return nil, ErrPromotionNotFound
	}

	return &AppliedPromotion{
		Code:      promo.Code,
		Reduction: promo.Reduction(subtotal),
	}, nil
}

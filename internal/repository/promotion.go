package repository

import (
	"context"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

type PromotionRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Promotion, error)
}

type promotionRepositoryImpl struct {
	cms client.CMSClient
}

func NewPromotionRepository(cms client.CMSClient) PromotionRepository {
	return &promotionRepositoryImpl{cms: cms}
}

type cmsPromotion struct {
	Code       string              `json:"code"`
	AmountOff  decimal.NullDecimal `json:"amountOff"`
	PercentOff decimal.NullDecimal `json:"percentOff"`
	Active     *bool               `json:"active"`
	ExpiresAt  *time.Time          `json:"expiresAt"`
}

func (r *promotionRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	q := url.Values{}
	q.Set("filters[code][$eqi]", code)
	q.Set("pagination[pageSize]", "1")

	var res struct {
		Data []cmsPromotion `json:"data"`
	}
	if err := r.cms.Get(ctx, "/api/promotions", q, &res); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cms find promotion: %w", err)
	}
	if len(res.Data) == 0 {
		return nil, ErrNotFound
	}

	p := res.Data[0]
	promo := &model.Promotion{
		Code:      p.Code,
		Active:    p.Active == nil || *p.Active,
		ExpiresAt: p.ExpiresAt,
	}
	if p.AmountOff.Valid {
		amount, err := model.MoneyFromDecimal(p.AmountOff.Decimal)
		if err != nil {
			return nil, fmt.Errorf("%w: promotion %s: %w", ErrInvalidRecord, p.Code, err)
		}
		promo.AmountOff = amount
	}
	if p.PercentOff.Valid {
		if p.PercentOff.Decimal.IsNegative() || p.PercentOff.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: promotion %s percent out of range", ErrInvalidRecord, p.Code)
		}
		promo.PercentOff = p.PercentOff.Decimal
	}

	return promo, nil
}

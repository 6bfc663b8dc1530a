package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ShippingService interface {
	// Quote returns carrier rates in the configured currency, cheapest first.
	Quote(ctx context.Context, to model.Address, parcels []model.Parcel) ([]model.RateQuote, error)
}

type ShippingSettings struct {
	Origin   model.Address
	Currency string
	CacheTTL time.Duration
}

type shippingServiceImpl struct {
	shippo   client.ShippoClient
	cache    repository.RateCache
	settings ShippingSettings
}

func NewShippingService(shippo client.ShippoClient, cache repository.RateCache, settings ShippingSettings) ShippingService {
	return &shippingServiceImpl{
		shippo:   shippo,
		cache:    cache,
		settings: settings,
	}
}

func (s *shippingServiceImpl) Quote(ctx context.Context, to model.Address, parcels []model.Parcel) ([]model.RateQuote, error) {
	log := zerolog.Ctx(ctx)

	if missing := to.MissingFields(); len(missing) > 0 {
		return nil, ErrInvalidAddress.WithMessage("Destination address is missing: " + strings.Join(missing, ", "))
	}
	if len(parcels) == 0 {
		return nil, ErrInvalidParcel.WithMessage("At least one parcel is required")
	}
	if len(parcels) > model.MaxParcels {
		return nil, ErrInvalidParcel.WithMessage(fmt.Sprintf("At most %d parcels are allowed", model.MaxParcels))
	}
	for i := range parcels {
		if err := parcels[i].Validate(); err != nil {
			return nil, ErrInvalidParcel.WithMessage(fmt.Sprintf("Parcel %d: %s", i+1, err.Error()))
		}
	}

	if !s.shippo.Configured() {
		return nil, ErrConfiguration.WithMessage("Shipping rates are not configured")
	}
	if !s.settings.Origin.Complete() {
		return nil, ErrConfiguration.WithMessage("Shipping origin address is not configured")
	}

	key := s.cacheKey(to, parcels)
	if rates, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("shipping rate cache read")
	} else if ok {
		return rates, nil
	}

	resp, err := s.shippo.CreateShipment(ctx, &client.ShipmentRequest{
		AddressFrom: toShippoAddress(s.settings.Origin),
		AddressTo:   toShippoAddress(to),
		Parcels:     toShippoParcels(parcels),
		Async:       false,
	})
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUnavailable):
			return nil, ErrShippingUnavailable.Wrap(err)
		case errors.Is(err, client.ErrNotConfigured):
			return nil, ErrConfiguration.WithMessage("Shipping rates are not configured").Wrap(err)
		}
		return nil, ErrShippingUpstream.Wrap(err)
	}

	rates := s.normalizeRates(ctx, *resp.Rates)

	if err := s.cache.Set(ctx, key, rates, s.settings.CacheTTL); err != nil {
		log.Warn().Err(err).Msg("shipping rate cache write")
	}
	return rates, nil
}

func (s *shippingServiceImpl) normalizeRates(ctx context.Context, in []client.ShippoRate) []model.RateQuote {
	rates := make([]model.RateQuote, 0, len(in))
	for _, r := range in {
		if !strings.EqualFold(r.Currency, s.settings.Currency) {
			continue
		}
		amount, err := model.ParseMoney(r.Amount)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("rate_id", r.ObjectID).Msg("skipping shipping rate with bad amount")
			continue
		}
		rates = append(rates, model.RateQuote{
			Provider:          r.Provider,
			ServiceLevelName:  r.ServiceLevel.Name,
			ServiceLevelToken: r.ServiceLevel.Token,
			Amount:            amount,
			Currency:          strings.ToUpper(r.Currency),
			EstimatedDays:     r.EstimatedDays,
		})
	}

	slices.SortStableFunc(rates, func(a, b model.RateQuote) int {
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return strings.Compare(a.Provider, b.Provider)
	})
	return rates
}

func (s *shippingServiceImpl) cacheKey(to model.Address, parcels []model.Parcel) string {
	body, _ := json.Marshal(struct {
		From     model.Address  `json:"from"`
		To       model.Address  `json:"to"`
		Parcels  []model.Parcel `json:"parcels"`
		Currency string         `json:"currency"`
	}{s.settings.Origin, to, parcels, strings.ToUpper(s.settings.Currency)})

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func toShippoAddress(a model.Address) client.ShippoAddress {
	return client.ShippoAddress{
		Name:    a.Name,
		Company: a.Company,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

func toShippoParcels(parcels []model.Parcel) []client.ShippoParcel {
	out := make([]client.ShippoParcel, len(parcels))
	for i, p := range parcels {
		out[i] = client.ShippoParcel{
			Length:       p.Length.String(),
			Width:        p.Width.String(),
			Height:       p.Height.String(),
			DistanceUnit: p.DistanceUnit,
			Weight:       p.Weight.String(),
			MassUnit:     p.MassUnit,
		}
	}
	return out
}

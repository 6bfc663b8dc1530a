package service

import (
	"context"
	"errors"
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const resolveConcurrency = 4

type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)
	// ResolveLines prices each cart item from the catalog. Items that cannot
	// be resolved are dropped and reported; the result keeps cart order.
	ResolveLines(ctx context.Context, items []cart.Item) ([]model.PricedLine, []cart.Dropped)
}

type catalogServiceImpl struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{products: products}
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidQuery.WithMessage("Invalid product id")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidRecord) {
			return nil, ErrProductNotFound.Wrap(err)
		}
		return nil, catalogError(err)
	}
	if p.ID != id {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	if !q.Normalize() {
		return nil, ErrInvalidQuery.WithMessage("Unsupported sort order")
	}

	page, err := s.products.List(ctx, q)
	if err != nil {
		return nil, catalogError(err)
	}
	return page, nil
}

func (s *catalogServiceImpl) ResolveLines(ctx context.Context, items []cart.Item) ([]model.PricedLine, []cart.Dropped) {
	type result struct {
		product *model.Product
		reason  string
	}
	results := make([]result, len(items))

	byID := s.findMany(ctx, items)

	// Ids missing from the batch are looked up singly to find the drop reason.
	var g errgroup.Group
	g.SetLimit(resolveConcurrency)
	for i, item := range items {
		if p, ok := byID[item.ProductID]; ok {
			if p.Price <= 0 {
				results[i] = result{reason: cart.ReasonInvalidPrice}
			} else {
				results[i] = result{product: p}
			}
			continue
		}
		i, item := i, item
		g.Go(func() error {
			p, reason := s.resolveOne(ctx, item.ProductID)
			results[i] = result{product: p, reason: reason}
			return nil
		})
	}
	_ = g.Wait()

	lines := make([]model.PricedLine, 0, len(items))
	var dropped []cart.Dropped
	for i, r := range results {
		if r.reason != "" {
			dropped = append(dropped, cart.Dropped{Ref: strconv.FormatInt(items[i].ProductID, 10), Reason: r.reason})
			continue
		}
		lines = append(lines, model.PricedLine{Product: r.product, Quantity: items[i].Quantity})
	}
	return lines, dropped
}

// findMany fetches all cart products in one query and indexes them by id.
// A failed query yields an empty index.
func (s *catalogServiceImpl) findMany(ctx context.Context, items []cart.Item) map[int64]*model.Product {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.products.FindMany(ctx, ids)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("count", len(ids)).Msg("batch product lookup failed")
		return nil
	}

	byID := make(map[int64]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

func (s *catalogServiceImpl) resolveOne(ctx context.Context, id int64) (*model.Product, string) {
	log := zerolog.Ctx(ctx)

	p, err := s.products.FindByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Warn().Int64("product_id", id).Msg("cart product not found")
		return nil, cart.ReasonNotFound
	case errors.Is(err, repository.ErrInvalidRecord):
		log.Warn().Err(err).Int64("product_id", id).Msg("cart product has invalid price")
		return nil, cart.ReasonInvalidPrice
	case err != nil:
		log.Warn().Err(err).Int64("product_id", id).Msg("cart product lookup failed")
		return nil, cart.ReasonLookupFailed
	}

	if p.ID != id {
		log.Warn().Int64("product_id", id).Int64("returned_id", p.ID).Msg("catalog returned a different product")
		return nil, cart.ReasonIDMismatch
	}
	if p.Price <= 0 {
		return nil, cart.ReasonInvalidPrice
	}
	return p, ""
}

func catalogError(err error) error {
	if errors.Is(err, client.ErrUnavailable) {
		return ErrCatalogUnavailable.Wrap(err)
	}
	if errors.Is(err, client.ErrNotConfigured) {
		return ErrConfiguration.Wrap(err)
	}
	return ErrCatalogUpstream.Wrap(err)
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/model"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const productsPath = "/api/products"

type ProductRepository interface {
	// FindByID returns the record the CMS answers with. The caller checks
	// that its id matches the one requested.
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindMany(ctx context.Context, ids []int64) ([]*model.Product, error)
	List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)
}

type productRepositoryImpl struct {
	cms client.CMSClient
}

func NewProductRepository(cms client.CMSClient) ProductRepository {
	return &productRepositoryImpl{cms: cms}
}

type cmsID string

func (id *cmsID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = cmsID(s)
		return nil
	}
	*id = cmsID(b)
	return nil
}

type cmsMedia struct {
	URL string `json:"url"`
}

type cmsProduct struct {
	ID          cmsID               `json:"id"`
	DocumentID  string              `json:"documentId"`
	Title       string              `json:"title"`
	Price       decimal.NullDecimal `json:"price"`
	Description string              `json:"description"`
	Weight      decimal.NullDecimal `json:"weight"`
	BannerImage *cmsMedia           `json:"bannerImage"`
}

type cmsPagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type cmsProductList struct {
	Data []cmsProduct `json:"data"`
	Meta struct {
		Pagination cmsPagination `json:"pagination"`
	} `json:"meta"`
}

func (r *productRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	q := url.Values{}
	q.Set("filters[id][$eq]", strconv.FormatInt(id, 10))
	q.Set("populate", "bannerImage")
	q.Set("pagination[pageSize]", "1")

	var res cmsProductList
	if err := r.cms.Get(ctx, productsPath, q, &res); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cms find product %d: %w", id, err)
	}
	if len(res.Data) == 0 {
		return nil, ErrNotFound
	}

	return r.toProduct(res.Data[0])
}

// FindMany skips records that fail conversion.
func (r *productRepositoryImpl) FindMany(ctx context.Context, ids []int64) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := url.Values{}
	for i, id := range ids {
		q.Set(fmt.Sprintf("filters[id][$in][%d]", i), strconv.FormatInt(id, 10))
	}
	q.Set("populate", "bannerImage")
	q.Set("pagination[pageSize]", strconv.Itoa(len(ids)))

	var res cmsProductList
	if err := r.cms.Get(ctx, productsPath, q, &res); err != nil {
		return nil, fmt.Errorf("cms find products: %w", err)
	}

	products := make([]*model.Product, 0, len(res.Data))
	for _, p := range res.Data {
		product, err := r.toProduct(p)
		if err != nil {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *productRepositoryImpl) List(ctx context.Context, query model.ProductQuery) (*model.ProductPage, error) {
	q := url.Values{}
	if query.Search != "" {
		q.Set("filters[title][$containsi]", query.Search)
	}
	if query.Sort != "" {
		q.Set("sort", query.Sort)
	}
	q.Set("pagination[page]", strconv.Itoa(query.Page))
	q.Set("pagination[pageSize]", strconv.Itoa(query.PageSize))
	q.Set("populate", "bannerImage")

	var res cmsProductList
	if err := r.cms.Get(ctx, productsPath, q, &res); err != nil {
		return nil, fmt.Errorf("cms list products: %w", err)
	}

	page := &model.ProductPage{
		Products: make([]*model.Product, 0, len(res.Data)),
		Pagination: model.Pagination{
			Page:      res.Meta.Pagination.Page,
			PageSize:  res.Meta.Pagination.PageSize,
			PageCount: res.Meta.Pagination.PageCount,
			Total:     res.Meta.Pagination.Total,
		},
	}
	for _, p := range res.Data {
		product, err := r.toProduct(p)
		if err != nil {
			continue
		}
		page.Products = append(page.Products, product)
	}
	return page, nil
}

func (r *productRepositoryImpl) toProduct(p cmsProduct) (*model.Product, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(p.ID)), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: product id %q", ErrInvalidRecord, p.ID)
	}
	if !p.Price.Valid {
		return nil, fmt.Errorf("%w: product %d has no price", ErrInvalidRecord, id)
	}

	price, err := model.MoneyFromDecimal(p.Price.Decimal)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d: %w", ErrInvalidRecord, id, err)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: product %d has non-positive price", ErrInvalidRecord, id)
	}

	product := &model.Product{
		ID:          id,
		DocumentID:  p.DocumentID,
		Title:       p.Title,
		Price:       price,
		Description: p.Description,
	}
	if p.Weight.Valid {
		product.Weight = p.Weight.Decimal.InexactFloat64()
	}
	if p.BannerImage != nil {
		product.BannerImage = r.cms.MediaURL(p.BannerImage.URL)
	}

	return product, nil
}

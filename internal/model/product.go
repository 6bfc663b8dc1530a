package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64   `json:"id"`
	DocumentID  string  `json:"documentId"`
	Title       string  `json:"title"`
	Price       Money   `json:"price"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty"` // kg
	BannerImage string  `json:"bannerImage,omitempty"`
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

var productSorts = map[string]bool{
	"price:asc":      true,
	"price:desc":     true,
	"title:asc":      true,
	"title:desc":     true,
	"createdAt:desc": true,
}

type ProductQuery struct {
	Search   string
	Page     int
	PageSize int
	Sort     string
}

// Normalize clamps paging and reports whether Sort is supported.
func (q *ProductQuery) Normalize() bool {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q.Sort == "" || productSorts[q.Sort]
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type ProductPage struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type Promotion struct {
	Code       string
	AmountOff  Money
	PercentOff decimal.Decimal
	Active     bool
	ExpiresAt  *time.Time
}

func (p Promotion) Applicable(now time.Time) bool {
	if !p.Active {
		return false
	}
	return p.ExpiresAt == nil || now.Before(*p.ExpiresAt)
}

// Reduction is the amount taken off subtotal. Percentages round half up to
// the cent and the result never exceeds subtotal.
func (p Promotion) Reduction(subtotal Money) Money {
	var r Money
	switch {
	case p.AmountOff > 0:
		r = p.AmountOff
	case p.PercentOff.IsPositive():
		cents := decimal.NewFromInt(int64(subtotal)).
			Mul(p.PercentOff).
			Div(decimal.NewFromInt(100)).
			Round(0)
		r = Money(cents.IntPart())
	}
	if r > subtotal {
		r = subtotal
	}
	return r
}

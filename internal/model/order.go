package model

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCanceled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// StatusesAllowing lists every status that may move to next.
func StatusesAllowing(next OrderStatus) []OrderStatus {
	var from []OrderStatus
	for s, targets := range orderTransitions {
		for _, t := range targets {
			if t == next {
				from = append(from, s)
			}
		}
	}
	return from
}

type Address struct {
	Name    string `gorm:"size:128" json:"name"`
	Company string `gorm:"size:128" json:"company,omitempty"`
	Street1 string `gorm:"size:255" json:"street1"`
	Street2 string `gorm:"size:255" json:"street2,omitempty"`
	City    string `gorm:"size:128" json:"city"`
	State   string `gorm:"size:64" json:"state,omitempty"`
	Zip     string `gorm:"size:32" json:"zip"`
	Country string `gorm:"size:2" json:"country"`
	Phone   string `gorm:"size:32" json:"phone,omitempty"`
	Email   string `gorm:"size:254" json:"email,omitempty"`
}

// MissingFields returns the names of the fields a carrier needs that are
// blank.
func (a Address) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"name", a.Name},
		{"street1", a.Street1},
		{"city", a.City},
		{"zip", a.Zip},
		{"country", a.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (a Address) Complete() bool {
	return len(a.MissingFields()) == 0
}

func (a Address) IsZero() bool {
	return a == Address{}
}

type ShippingMethod struct {
	Carrier string `gorm:"size:64" json:"carrier"`
	Price   Money  `json:"price"`
}

// PricedLine is a cart entry resolved against the catalog.
type PricedLine struct {
	Product  *Product
	Quantity int
}

func (l PricedLine) Total() Money {
	return l.Product.Price.Mul(l.Quantity)
}

// Subtotal sums the line totals and fails once the sum leaves the
// representable range.
func Subtotal(lines []PricedLine) (Money, error) {
	var sum Money
	for _, l := range lines {
		t := l.Total()
		if t < 0 || sum > maxCents-t {
			return 0, fmt.Errorf("%w: subtotal out of range", ErrInvalidAmount)
		}
		sum += t
	}
	return sum, nil
}

// OrderCommittedEvent is published after an order is persisted.
type OrderCommittedEvent struct {
	OrderNumber string               `json:"orderNumber"`
	UserID      string               `json:"userId"`
	Subtotal    Money                `json:"subtotal"`
	Total       Money                `json:"total"`
	Currency    string               `json:"currency"`
	Lines       []OrderCommittedLine `json:"lines"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type OrderCommittedLine struct {
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
}

func NewOrderCommittedEvent(o *Order) OrderCommittedEvent {
	lines := make([]OrderCommittedLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderCommittedLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return OrderCommittedEvent{
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Subtotal:    o.Subtotal,
		Total:       o.Total,
		Currency:    o.Currency,
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
	}
}

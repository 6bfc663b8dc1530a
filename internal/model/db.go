package model

import "time"

type Order struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`
	UserID      string `gorm:"size:128;index;not null"`
	UserEmail   string `gorm:"size:254"`

	ShippingAddress Address        `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address        `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingMethod  ShippingMethod `gorm:"embedded;embeddedPrefix:shipping_method_"`

	Subtotal Money       `gorm:"not null"`
	Total    Money       `gorm:"not null"`
	Currency string      `gorm:"size:8;not null"`
	Status   OrderStatus `gorm:"size:32;index;not null"`

	// at most one order per checkout session
	StripeSessionID string `gorm:"size:255;uniqueIndex;not null"`
	PaymentIntentID string `gorm:"size:255;index"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine is immutable once written; UnitPrice is the catalog price at
// commit time.
type OrderLine struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"index;not null"`
	ProductID int64  `gorm:"index;not null"`
	Title     string `gorm:"size:255;not null"`
	Quantity  int    `gorm:"not null"`
	UnitPrice Money  `gorm:"not null"`

	CreatedAt time.Time
}

func (l OrderLine) Total() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

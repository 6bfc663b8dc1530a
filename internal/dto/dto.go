package dto

import (
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/model"
	"strings"
	"time"
	"unicode/utf8"
)

type CheckoutRequest struct {
	Items []cart.Line `json:"items"`
}

type CreateOrderRequest struct {
	Cart            []cart.Line   `json:"cart"`
	StripeSessionID string        `json:"stripeSessionId"`
	UserEmail       string        `json:"userEmail" validate:"omitempty,email,max=254"`
	ShippingAddress model.Address `json:"shippingAddress"`
	BillingAddress  model.Address `json:"billingAddress"`
}

type CreateOrderResponse struct {
	Success      bool           `json:"success"`
	OrderNumber  string         `json:"orderNumber"`
	Subtotal     model.Money    `json:"subtotal"`
	Total        model.Money    `json:"total"`
	DroppedLines []cart.Dropped `json:"droppedLines"`
}

// SessionRequest is shared by the endpoints that look an order up by its
// checkout session.
type SessionRequest struct {
	StripeSessionID string `json:"stripeSessionId" validate:"max=255"`
}

type ShippingRatesRequest struct {
	AddressTo model.Address  `json:"addressTo"`
	Parcel    *model.Parcel  `json:"parcel"`
	Parcels   []model.Parcel `json:"parcels"`
}

// AllParcels merges the single and list forms.
func (r *ShippingRatesRequest) AllParcels() []model.Parcel {
	parcels := make([]model.Parcel, 0, len(r.Parcels)+1)
	if r.Parcel != nil {
		parcels = append(parcels, *r.Parcel)
	}
	return append(parcels, r.Parcels...)
}

type ShippingRatesResponse struct {
	Rates []model.RateQuote `json:"rates"`
}

type PromotionRequest struct {
	Code     string      `json:"code" validate:"required,max=64"`
	Subtotal model.Money `json:"subtotal"`
}

type PromotionResponse struct {
	Code      string      `json:"code"`
	Reduction model.Money `json:"reduction"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (r ContactRequest) ToModel() model.ContactMessage {
	return model.ContactMessage{Name: r.Name, Phone: r.Phone, Email: r.Email, Message: r.Message}
}

type SendResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type ProductResponse struct {
	Product *model.Product `json:"product"`
}

type ProductListResponse struct {
	Products   []*model.Product `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

type OrderLine struct {
	ProductID int64       `json:"productId"`
	Title     string      `json:"title"`
	Quantity  int         `json:"quantity"`
	UnitPrice model.Money `json:"unitPrice"`
	Total     model.Money `json:"total"`
}

type Order struct {
	OrderNumber     string               `json:"orderNumber"`
	Status          model.OrderStatus    `json:"status"`
	Email           string               `json:"email,omitempty"`
	Subtotal        model.Money          `json:"subtotal"`
	Shipping        model.ShippingMethod `json:"shipping"`
	Total           model.Money          `json:"total"`
	Currency        string               `json:"currency"`
	ShippingAddress *model.Address       `json:"shippingAddress,omitempty"`
	BillingAddress  *model.Address       `json:"billingAddress,omitempty"`
	Lines           []OrderLine          `json:"lines"`
	CreatedAt       time.Time            `json:"createdAt"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

// NewOrder is the owner's view of an order.
func NewOrder(o *model.Order) Order {
	out := Order{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Email:       o.UserEmail,
		Subtotal:    o.Subtotal,
		Shipping:    o.ShippingMethod,
		Total:       o.Total,
		Currency:    o.Currency,
		Lines:       make([]OrderLine, 0, len(o.Lines)),
		CreatedAt:   o.CreatedAt,
	}
	if !o.ShippingAddress.IsZero() {
		addr := o.ShippingAddress
		out.ShippingAddress = &addr
	}
	if !o.BillingAddress.IsZero() {
		addr := o.BillingAddress
		out.BillingAddress = &addr
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, OrderLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total(),
		})
	}
	return out
}

// NewRedactedOrder is safe to render on a success page: the email is
// masked and addresses are reduced to city and country.
func NewRedactedOrder(o *model.Order) Order {
	out := NewOrder(o)
	out.Email = MaskEmail(o.UserEmail)
	out.ShippingAddress = redactAddress(out.ShippingAddress)
	out.BillingAddress = redactAddress(out.BillingAddress)
	return out
}

func redactAddress(a *model.Address) *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{City: a.City, Country: a.Country}
}

// MaskEmail keeps the first character of the local part:
// jo@example.com becomes j***@example.com.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || domain == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return "***@" + domain
	}
	return local[:size] + "***@" + domain
}

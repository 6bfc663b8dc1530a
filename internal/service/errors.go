package service

import (
	"evcharge-storefront/internal/apperror"
	"net/http"
)

// order commit flow
var (
	ErrUnauthenticated      = apperror.New(apperror.KindUnauthenticated, "unauthenticated", "Authentication required")
	ErrMissingSession       = apperror.New(apperror.KindInvalid, "missing_session", "Missing checkout session id")
	ErrInvalidSession       = apperror.New(apperror.KindInvalid, "invalid_session", "Unknown checkout session")
	ErrPaymentNotConfirmed  = apperror.New(apperror.KindPaymentRequired, "payment_not_confirmed", "Payment has not been confirmed")
	ErrSessionIncomplete    = apperror.New(apperror.KindInvalid, "session_incomplete", "Checkout session is not complete")
	ErrDuplicateOrder       = apperror.New(apperror.KindConflict, "duplicate_order", "An order already exists for this checkout session")
	ErrEmptyCart            = apperror.New(apperror.KindInvalid, "empty_cart", "Cart is empty")
	ErrLineResolutionFailed = apperror.New(apperror.KindInternal, "line_resolution_failed", "Could not resolve any cart items")
	ErrPersistenceFailed    = apperror.New(apperror.KindInternal, "persistence_failed", "Could not save order")
	ErrOrderNotFound        = apperror.New(apperror.KindNotFound, "order_not_found", "Order not found")
	ErrForbidden            = apperror.New(apperror.KindForbidden, "forbidden", "Order belongs to another account")
)

// checkout
var (
	ErrPaymentUpstream = apperror.New(apperror.KindUpstream, "payment_upstream", "Payment provider request failed").
				WithStatus(http.StatusInternalServerError)
	ErrInvalidItems     = apperror.New(apperror.KindInvalid, "invalid_items", "Some cart items are invalid or unavailable")
	ErrCatalogLookup    = apperror.New(apperror.KindInternal, "catalog_lookup_failed", "Could not load products")
	ErrInvalidWebhook   = apperror.New(apperror.KindInvalid, "invalid_webhook", "Invalid webhook payload")
	ErrWebhookNotConfig = apperror.New(apperror.KindConfig, "webhook_not_configured", "Webhook handling is not configured")
)

// catalog and promotions
var (
	ErrProductNotFound    = apperror.New(apperror.KindNotFound, "product_not_found", "Product not found")
	ErrInvalidQuery       = apperror.New(apperror.KindInvalid, "invalid_query", "Invalid product query")
	ErrCatalogUpstream    = apperror.New(apperror.KindUpstream, "catalog_upstream", "Catalog request failed")
	ErrCatalogUnavailable = apperror.New(apperror.KindUnavailable, "catalog_unavailable", "Catalog temporarily unavailable")
	ErrPromotionNotFound  = apperror.New(apperror.KindNotFound, "promotion_not_found", "Promotion code is not valid")
	ErrConfiguration      = apperror.New(apperror.KindConfig, "configuration", "Service is not configured")
)

// shipping
var (
	ErrInvalidAddress      = apperror.New(apperror.KindInvalid, "invalid_address", "Destination address is incomplete")
	ErrInvalidParcel       = apperror.New(apperror.KindInvalid, "invalid_parcel", "Invalid parcel")
	ErrShippingUpstream    = apperror.New(apperror.KindUpstream, "shipping_upstream", "Shipping carrier request failed")
	ErrShippingUnavailable = apperror.New(apperror.KindUnavailable, "shipping_unavailable", "Shipping rates temporarily unavailable")
)

// notifications
var (
	ErrMissingRecipient = apperror.New(apperror.KindUnprocessable, "missing_recipient", "Order has no email address")
	ErrEmailUpstream    = apperror.New(apperror.KindUpstream, "email_upstream", "Email provider request failed")
	ErrInvalidContact   = apperror.New(apperror.KindInvalid, "invalid_contact", "Invalid contact form")
)

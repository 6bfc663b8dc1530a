package server

import (
	"context"
	"evcharge-storefront/internal/config"
	"evcharge-storefront/internal/handler"
	"evcharge-storefront/internal/middleware"
	"evcharge-storefront/internal/service"
	"evcharge-storefront/internal/validation"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Checkout      service.CheckoutService
	Orders        service.OrderService
	Catalog       service.CatalogService
	Promotions    service.PromotionService
	Shipping      service.ShippingService
	Notifications service.NotificationService
	Webhooks      service.WebhookService
}

type Server struct {
	echo *echo.Echo
	cfg  config.HTTPServer
	auth *middleware.Authenticator

	checkoutHandler     *handler.CheckoutHandler
	orderHandler        *handler.OrderHandler
	catalogHandler      *handler.CatalogHandler
	promotionHandler    *handler.PromotionHandler
	shippingHandler     *handler.ShippingHandler
	notificationHandler *handler.NotificationHandler
	webhookHandler      *handler.WebhookHandler
}

func NewServer(cfg config.HTTPServer, log zerolog.Logger, auth *middleware.Authenticator, svc Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLogLevel(log.GetLevel()))
	e.Validator = &requestValidator{validate: validation.New()}
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.AccessLog())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(auth.Middleware())

	s := &Server{
		echo:                e,
		cfg:                 cfg,
		auth:                auth,
		checkoutHandler:     handler.NewCheckoutHandler(svc.Checkout),
		orderHandler:        handler.NewOrderHandler(svc.Orders),
		catalogHandler:      handler.NewCatalogHandler(svc.Catalog),
		promotionHandler:    handler.NewPromotionHandler(svc.Promotions),
		shippingHandler:     handler.NewShippingHandler(svc.Shipping),
		notificationHandler: handler.NewNotificationHandler(svc.Orders, svc.Notifications),
		webhookHandler:      handler.NewWebhookHandler(svc.Webhooks),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:id", s.catalogHandler.GetProduct)
	api.POST("/promotions/resolve", s.promotionHandler.Resolve)

	api.POST("/checkout", s.checkoutHandler.Checkout)

	// -------- orders --------
	api.POST("/order", s.orderHandler.CreateOrder)
	api.GET("/order", s.orderHandler.ListOrders)
	api.POST("/order/by-session", s.orderHandler.OrderBySession)

	api.POST("/shipping-rates", s.shippingHandler.Rates)

	// -------- email --------
	// each email route keeps its own per-address budget
	api.POST("/resend/order-confirmation", s.notificationHandler.ResendOrderConfirmation, emailLimiter(s.cfg.ContactRateLimit))
	api.POST("/contact", s.notificationHandler.Contact, emailLimiter(s.cfg.ContactRateLimit))

	// -------- stripe callbacks --------
	api.POST("/stripe/webhook", s.webhookHandler.StripeWebhook)
}

// emailLimiter throttles a route that sends email, per client address.
func emailLimiter(perSecond float64) echo.MiddlewareFunc {
	deny := func(c echo.Context, _ string, _ error) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     3,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden).SetInternal(err)
		},
		DenyHandler: deny,
	})
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// echo's own logger only reports startup and internal failures.
func echoLogLevel(level zerolog.Level) gommonlog.Lvl {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return gommonlog.DEBUG
	case zerolog.InfoLevel:
		return gommonlog.INFO
	case zerolog.WarnLevel:
		return gommonlog.WARN
	case zerolog.Disabled:
		return gommonlog.OFF
	default:
		return gommonlog.ERROR
	}
}

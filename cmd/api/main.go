package main

import (
	"context"
	"errors"
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/config"
	"evcharge-storefront/internal/logger"
	"evcharge-storefront/internal/middleware"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/repository"
	"evcharge-storefront/internal/server"
	"evcharge-storefront/internal/service"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, "storefront-api")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx = log.WithContext(ctx)

	shippingPrice, err := model.ParseMoney(cfg.Shipping.FlatPrice)
	if err != nil {
		return fmt.Errorf("SHIPPING_FLAT_PRICE: %w", err)
	}

	db, err := client.InitDB(cfg.Database)
	if err != nil {
		return err
	}

	rdb, err := client.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	publisher := client.NewEventPublisher(&cfg.Kafka)
	defer publisher.Close()

	cmsClient := client.NewCMSClient(&cfg.CMS, log)
	shippoClient := client.NewShippoClient(&cfg.Shippo, log)
	stripeClient := client.NewStripeClient(&cfg.Stripe, log)
	emailClient, err := client.NewResendClient(&cfg.Resend, "")
	if err != nil {
		return err
	}

	productRepo := repository.NewProductRepository(cmsClient)
	promotionRepo := repository.NewPromotionRepository(cmsClient)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	rateCache := repository.NewRateCache(rdb)

	catalogService := service.NewCatalogService(productRepo)
	paymentService := service.NewPaymentService(stripeClient, service.PaymentSettings{
		Currency:         cfg.Stripe.Currency,
		ShippingPrice:    shippingPrice,
		ShippingCarrier:  cfg.Shipping.Carrier,
		AllowedCountries: cfg.Stripe.AllowedCountries,
		BaseURL:          cfg.BaseURL,
	})
	notificationService := service.NewNotificationService(emailClient, service.NotificationSettings{
		From:      cfg.Resend.From,
		ContactTo: cfg.Resend.ContactTo,
	})
	orderService := service.NewOrderService(
		paymentService,
		catalogService,
		orderRepo,
		notificationService,
		publisher,
		service.OrderSettings{
			Currency:        cfg.Stripe.Currency,
			ShippingPrice:   shippingPrice,
			ShippingCarrier: cfg.Shipping.Carrier,
		},
	)
	shippingService := service.NewShippingService(shippoClient, rateCache, service.ShippingSettings{
		Origin:   originAddress(cfg.Shippo.From),
		Currency: cfg.Shippo.Currency,
		CacheTTL: cfg.Shippo.CacheTTL,
	})

	auth, err := middleware.NewAuthenticator(cfg.Auth)
	if err != nil {
		return err
	}
	if !auth.Enabled() {
		log.Warn().Msg("no AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY set, order endpoints will reject every request")
	}

	srv := server.NewServer(cfg.HTTP, log, auth, server.Services{
		Checkout:      service.NewCheckoutService(catalogService, paymentService),
		Orders:        orderService,
		Catalog:       catalogService,
		Promotions:    service.NewPromotionService(promotionRepo),
		Shipping:      shippingService,
		Notifications: notificationService,
		Webhooks:      service.NewWebhookService(stripeClient, orderRepo, webhookEventRepo),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Environment.Name).Msg("starting http server")
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func originAddress(a config.Address) model.Address {
	return model.Address{
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

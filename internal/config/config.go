package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	Database    Database

	CMS      CMS      `envPrefix:"CMS_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
	Shipping Shipping `envPrefix:"SHIPPING_"`
	Shippo   Shippo   `envPrefix:"SHIPPO_"`
	Resend   Resend   `envPrefix:"RESEND_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	BodyLimit       string        `env:"HTTP_BODY_LIMIT" envDefault:"1M"`
	AllowOrigins    []string      `env:"HTTP_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	// contact form requests per second per client address
	ContactRateLimit float64 `env:"HTTP_CONTACT_RATE_LIMIT" envDefault:"0.2"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // mysql, sqlite
	URL    string `env:"DATABASE_URL" envDefault:"file:storefront.db"`
}

type CMS struct {
	URL     string        `env:"URL"`
	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	// only set when pointing at stripe-mock or a test server
	APIURL           string   `env:"API_URL"`
	Currency         string   `env:"CURRENCY" envDefault:"eur"`
	AllowedCountries []string `env:"ALLOWED_COUNTRIES" envSeparator:"," envDefault:"DE,AT,NL,BE,FR,LU"`
}

// Shipping is the fixed shipping charge applied by the order commit flow.
type Shipping struct {
	FlatPrice string `env:"FLAT_PRICE" envDefault:"0.00"`
	Carrier   string `env:"CARRIER" envDefault:"Standard"`
}

type Shippo struct {
	APIToken string        `env:"API_TOKEN"`
	APIURL   string        `env:"API_URL" envDefault:"https://api.goshippo.com"`
	Currency string        `env:"CURRENCY" envDefault:"EUR"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	From     Address       `envPrefix:"FROM_"`
}

type Address struct {
	Name    string `env:"NAME"`
	Company string `env:"COMPANY"`
	Street1 string `env:"STREET1"`
	Street2 string `env:"STREET2"`
	City    string `env:"CITY"`
	State   string `env:"STATE"`
	Zip     string `env:"ZIP"`
	Country string `env:"COUNTRY"`
	Phone   string `env:"PHONE"`
	Email   string `env:"EMAIL"`
}

type Resend struct {
	APIKey    string `env:"API_KEY"`
	From      string `env:"FROM" envDefault:"Chargepoint Shop <orders@example.com>"`
	ContactTo string `env:"CONTACT_TO"`
}

type Auth struct {
	JWTSecret    string `env:"JWT_SECRET"`
	JWTPublicKey string `env:"JWT_PUBLIC_KEY"`
	Issuer       string `env:"ISSUER"`
	Audience     string `env:"AUDIENCE"`
	CookieName   string `env:"COOKIE_NAME" envDefault:"__session"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Kafka struct {
	Brokers    []string `env:"BROKERS" envSeparator:","`
	OrderTopic string   `env:"ORDER_TOPIC" envDefault:"orders.committed"`
}

// Load reads an optional .env file and parses the process environment.
func Load() (*Config, error) {
	// missing .env is fine outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be mysql or sqlite, got %q", c.Database.Driver))
	}

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	if c.Stripe.Currency == "" {
		errs = append(errs, errors.New("STRIPE_CURRENCY is required"))
	}

	if c.Auth.JWTSecret != "" && c.Auth.JWTPublicKey != "" {
		errs = append(errs, errors.New("set only one of AUTH_JWT_SECRET and AUTH_JWT_PUBLIC_KEY"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment.Name == "production"
}

func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

package middleware

import (
	"errors"
	"evcharge-storefront/internal/config"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const identityKey = "identity"

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID string
	Email  string
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator verifies identity-provider tokens. Requests without a token
// pass through anonymously; endpoints that need a user reject them later.
type Authenticator struct {
	parser     *jwt.Parser
	keyFunc    jwt.Keyfunc
	cookieName string
}

func NewAuthenticator(cfg config.Auth) (*Authenticator, error) {
	a := &Authenticator{cookieName: cfg.CookieName}

	var method string
	switch {
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		method = jwt.SigningMethodHS256.Alg()
		a.keyFunc = func(*jwt.Token) (any, error) { return secret, nil }
	case cfg.JWTPublicKey != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		method = jwt.SigningMethodRS256.Alg()
		a.keyFunc = func(*jwt.Token) (any, error) { return key, nil }
	default:
		return a, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	a.parser = jwt.NewParser(opts...)

	return a, nil
}

func (a *Authenticator) Enabled() bool {
	return a.parser != nil
}

func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := a.token(c.Request())
			if raw == "" || !a.Enabled() {
				return next(c)
			}

			identity, err := a.verify(raw)
			if err != nil {
				zerolog.Ctx(c.Request().Context()).Debug().Err(err).Msg("rejected bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			SetIdentity(c, identity)

			req := c.Request()
			log := zerolog.Ctx(req.Context()).With().Str("user_id", identity.UserID).Logger()
			c.SetRequest(req.WithContext(log.WithContext(req.Context())))

			return next(c)
		}
	}
}

func (a *Authenticator) verify(raw string) (Identity, error) {
	claims := &Claims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, a.keyFunc); err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token has no subject")
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (a *Authenticator) token(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	if a.cookieName == "" {
		return ""
	}
	if cookie, err := r.Cookie(a.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func SetIdentity(c echo.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok
}

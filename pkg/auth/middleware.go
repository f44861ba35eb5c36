package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/logx"
)

// TokenMiddleware validates bearer tokens issued to trusted callers (the
// gateway relay and operational tooling). Tokens are HMAC-signed JWTs.
type TokenMiddleware struct {
	secret    []byte
	issuer    string
	tolerance jwt.ParserOption
	disabled  bool
}

// NewTokenMiddleware builds the middleware from auth config. An empty secret
// disables verification; Load rejects that outside development.
func NewTokenMiddleware(cfg config.AuthConfig) *TokenMiddleware {
	if cfg.JWTSecret == "" {
		logx.Warn("⚠️  JWT_SECRET_KEY is empty, API authentication is disabled")
		return &TokenMiddleware{disabled: true}
	}
	return &TokenMiddleware{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		tolerance: jwt.WithLeeway(cfg.TokenTolerance),
	}
}

// Authenticate returns a handler that rejects requests without a valid token
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.disabled {
			return c.Next()
		}

		raw := extractBearer(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return ErrMissingToken()
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken().WithDetail("alg", t.Header["alg"])
			}
			return m.secret, nil
		}, jwt.WithIssuer(m.issuer), jwt.WithValidMethods([]string{"HS256"}), m.tolerance)
		if err != nil || !token.Valid {
			return ErrInvalidToken().WithCause(err)
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Locals("auth_subject", sub)
		}
		return c.Next()
	}
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

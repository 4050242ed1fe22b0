// Package middleware provides logging, tracing, metrics, rate limiting and admin authentication middleware.
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tgscraper/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer is the iss claim required on admin tokens.
	TokenIssuer = "tgscraper-api"
	// TokenAudience is the aud claim required on admin tokens.
	TokenAudience = "tgscraper-admin"
	// AdminSubjectLocal is the Fiber locals key holding the authenticated subject.
	AdminSubjectLocal = "adminSubject"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

func authEnabled() bool {
	return cfg != nil && cfg.AuthEnabled
}

// IssueAdminToken signs an HS256 admin token for subject valid for ttl.
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAdminToken validates signature, expiry, issuer and audience and returns the subject.
func ParseAdminToken(secret, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

// bearerToken extracts the token from "Bearer <token>". On failure the
// second value is the client-facing reason.
func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
		"code":  "UNAUTHORIZED",
	})
}

// AdminRequired enforces an admin Bearer token on mutating routes.
// It is a no-op when AUTH_ENABLED is false.
func AdminRequired(c *fiber.Ctx) error {
	if !authEnabled() {
		return c.Next()
	}

	tokenString, reason := bearerToken(c)
	if reason != "" {
		return unauthorized(c, reason)
	}

	subject, err := ParseAdminToken(cfg.JWTSecret, tokenString)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	c.Locals(AdminSubjectLocal, subject)
	return c.Next()
}

// WebSocketAdminRequired accepts the token from the "token" query parameter,
// since browsers cannot set headers on WebSocket upgrades.
func WebSocketAdminRequired(c *fiber.Ctx) error {
	if !authEnabled() {
		return c.Next()
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		var reason string
		tokenString, reason = bearerToken(c)
		if reason != "" {
			return unauthorized(c, "Token required")
		}
	}

	subject, err := ParseAdminToken(cfg.JWTSecret, tokenString)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	c.Locals(AdminSubjectLocal, subject)
	return c.Next()
}

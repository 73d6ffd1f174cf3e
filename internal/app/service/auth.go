package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/atinyakov/barcoder/internal/clock"
)

// AuthIface defines the token operations used by the admin middleware.
type AuthIface interface {
	BuildJWTString(subject string) (string, error)
	ParseRawJWT(tokenString string) (*Claims, error)
}

// Claims represents the claims carried by an admin token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// RoleAdmin grants access to the admin endpoints.
const RoleAdmin = "admin"

// TokenExp defines the lifetime of an admin token.
const TokenExp = time.Hour * 24

var ErrInvalidToken = errors.New("invalid token")

// Auth signs and verifies HS256 admin tokens with a shared secret.
type Auth struct {
	secret []byte
	clock  clock.Clock
}

func NewAuth(secret string, clk clock.Clock) *Auth {
	return &Auth{
		secret: []byte(secret),
		clock:  clk,
	}
}

// BuildJWTString mints an admin token for subject.
func (a *Auth) BuildJWTString(subject string) (string, error) {
	now := a.clock.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExp)),
		},
		Role: RoleAdmin,
	})

	return token.SignedString(a.secret)
}

// ParseRawJWT verifies tokenString and requires the admin role.
func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

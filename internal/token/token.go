// Package token issues and verifies signed, time-bounded session tokens.
// Tokens are stateless: validity is proven by signature and expiry alone,
// so revocation before expiry is not supported.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/qpay/securegate/internal/errs"
	"github.com/qpay/securegate/internal/models"
	"github.com/qpay/securegate/internal/repository"
)

// AccountResolver resolves a login identifier (email or mobile number)
// to the account it belongs to.
type AccountResolver interface {
	// FindByIdentifier returns the matching user, or
	// repository.ErrUserNotFound when no account matches.
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// Claims is the claim set carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Authority issues and verifies HMAC-signed session tokens and resolves
// the subject against the account store.
type Authority struct {
	secret   []byte
	ttl      time.Duration
	resolver AccountResolver

	now func() time.Time
}

// NewAuthority creates an Authority signing with the given process-wide
// secret. Tokens expire ttl after issuance.
func NewAuthority(secret string, ttl time.Duration, resolver AccountResolver) *Authority {
	return &Authority{
		secret:   []byte(secret),
		ttl:      ttl,
		resolver: resolver,
		now:      time.Now,
	}
}

// Issue signs a token with subject = identifier and expiry = now + TTL.
func (a *Authority) Issue(identifier string) (string, error) {
	now := a.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})

	signed, err := t.SignedString(a.secret)
	if err != nil {
		return "", errs.Internal("failed to sign token", err)
	}
	return signed, nil
}

// Verify validates signature and expiry, then resolves the subject
// against the account store by email or mobile number. Any failure,
// including an unknown subject, yields an Unauthorized error.
func (a *Authority) Verify(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, errs.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return nil, errs.Unauthorized("invalid token")
	}

	user, err := a.resolver.FindByIdentifier(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errs.Unauthorized("user not found")
		}
		return nil, errs.Internal("failed to resolve token subject", err)
	}
	return user, nil
}

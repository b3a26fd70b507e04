// Package jwt issues HS256 bearer tokens for authenticated accounts.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// DefaultTTL matches the session lifetime of the session store.
const DefaultTTL = 24 * time.Hour

const issuer = "ventrest-api"

var _ ports.TokenIssuer = (*Issuer)(nil)

type claims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}

// Issuer signs tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer validates the secret and builds an issuer.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source for deterministic testing.
func (i *Issuer) WithClock(now func() time.Time) {
	if now != nil {
		i.now = now
	}
}

// Issue signs a token carrying the user id as subject.
func (i *Issuer) Issue(identity auth.Identity) (ports.IssuedToken, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims{
		Role: string(identity.Role),
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return ports.IssuedToken{Value: signed, ExpiresAt: expires}, nil
}

// Verify checks signature, issuer and expiry.
func (i *Issuer) Verify(raw string) (auth.Identity, error) {
	var parsed claims
	_, err := gojwt.ParseWithClaims(raw, &parsed, func(token *gojwt.Token) (any, error) {
		return i.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(issuer),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	id, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: bad subject", ports.ErrInvalidToken)
	}
	role, err := auth.ParseRole(parsed.Role)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: bad role", ports.ErrInvalidToken)
	}
	return auth.Identity{UserID: id, Role: role}, nil
}

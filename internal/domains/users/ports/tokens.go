package ports

import (
	"errors"
	"time"

	"github.com/Apurer/ventrest-api/internal/shared/auth"
)

// ErrInvalidToken covers malformed, forged and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// IssuedToken is a signed bearer token.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(identity auth.Identity) (IssuedToken, error)
	Verify(token string) (auth.Identity, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
)

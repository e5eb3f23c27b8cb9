// Package token issues and verifies the signed session tokens carried by
// dashboard clients. Tokens are self-contained HS256 JWTs; the server keeps
// only the signing secret, never the tokens. Rotating the secret is the one
// revocation mechanism and invalidates every outstanding token at once.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
)

// DefaultTTL is the session lifetime. There is no refresh endpoint: an
// expired token requires a fresh login.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrMalformed means the token is structurally invalid, rejected before
	// any signature work.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature means the signature does not match the current secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired means the token was valid but its lifetime has elapsed.
	ErrExpired = errors.New("token expired")
)

// Claims is the signed assertion minted at login. Role is a snapshot: it is
// not re-checked against the live directory until the next login.
type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Codec {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for the given public user view.
func (c *Codec) Issue(user domain.PublicUser) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the token against the current secret and clock and returns
// the principal it asserts. Failures are classified so the guard can log
// them distinctly while answering callers uniformly.
func (c *Codec) Verify(tokenString string) (*domain.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidSignature
		}
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return &domain.Principal{Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

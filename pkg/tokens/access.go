package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultAccessTTL = 30 * time.Minute

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload and expiry alike.
var ErrInvalidToken = errors.New("invalid token")

// Subject is the identity snapshot embedded into an access token at issue time.
type Subject struct {
	ID         uint
	Email      string
	IsAdmin    bool
	IsSupplier bool
	IsCustomer bool
}

type AccessClaims struct {
	UserID     uint   `json:"id"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	IsSupplier bool   `json:"is_supplier"`
	IsCustomer bool   `json:"is_customer"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 access tokens.
type Codec struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &Codec{Secret: secret, TTL: ttl}
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Codec) Issue(s Subject) (string, time.Time, error) {
	iat := c.now()
	exp := iat.Add(c.TTL)

	claims := AccessClaims{
		UserID:     s.ID,
		Email:      s.Email,
		IsAdmin:    s.IsAdmin,
		IsSupplier: s.IsSupplier,
		IsCustomer: s.IsCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(s.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

func (c *Codec) Parse(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// UserIDFromSubject reads the user id back out of the "sub" claim.
func (c *AccessClaims) UserIDFromSubject() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	return uint(id), nil
}

package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed token, missing subject, expired. Callers never learn
// which one it was.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens. Access and refresh tokens share the
// secret and the claim shape; they differ only by TTL.
type Codec struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c *Codec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

func (c *Codec) IssueAccess(subject string) (string, time.Time, error) {
	return c.Issue(subject, c.AccessTTL)
}

func (c *Codec) IssueRefresh(subject string) (string, time.Time, error) {
	return c.Issue(subject, c.RefreshTTL)
}

// Verify checks the signature and expiry and returns the subject.
func (c *Codec) Verify(tokenStr string) (string, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

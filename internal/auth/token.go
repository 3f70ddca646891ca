package auth

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sstanqq/web-task-manager/internal/domain/errors"
)

// DefaultTokenTTL matches the 30-minute access token lifetime of the API.
const DefaultTokenTTL = 30 * time.Minute

// TokenIssuer issues and verifies signed bearer tokens. The signing secret
// and algorithm (HS256) are fixed for the lifetime of the process.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue encodes the subject into a token expiring after the default TTL.
func (ti *TokenIssuer) Issue(subject string) (string, error) {
	return ti.IssueWithTTL(subject, ti.ttl)
}

// IssueWithTTL is Issue with an explicit lifetime; tests use it to mint
// already-expired tokens.
func (ti *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify returns the subject claim of a valid token. Expired tokens fail
// with ErrTokenExpired, everything else (bad signature, wrong algorithm,
// garbage input, empty subject) with ErrInvalidToken.
func (ti *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken
		}
		return ti.secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.ErrTokenExpired
		}
		return "", errors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", errors.ErrInvalidToken
	}
	return claims.Subject, nil
}

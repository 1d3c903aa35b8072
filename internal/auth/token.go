// Package auth implements the stateless session token machinery. Tokens are
// HS256 JWTs signed with a process-wide secret; there is no server-side
// session store or revocation list, so a token stays valid until its expiry
// even if the account it names is demoted or deleted.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

// ErrInvalidToken is returned for every verification failure. Callers must
// not be able to tell an expired token apart from a tampered one.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a session token.
type Claims struct {
	UserID string
	Role   domain.Role
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token embedding the user id and role with the configured expiry.
func (t *TokenIssuer) Issue(userID string, role domain.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature and expiry and recovers the claims.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)
	role := domain.Role(roleStr)
	if sub == "" || !role.IsValid() {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: sub, Role: role}, nil
}

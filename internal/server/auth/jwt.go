// Package auth issues and verifies the bearer tokens that carry an
// authenticated identity between requests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
)

// TokenLifetime is the fixed validity window of an issued token.
const TokenLifetime = 604800 * time.Second

// Claims is the signed payload: the standard registered claims plus the
// user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Identity is the authenticated subject extracted from a verified token.
type Identity struct {
	UserID   string
	Username string
}

// TokenManager signs and verifies HS256 tokens with a process-wide key.
type TokenManager struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

// NewTokenManager returns a TokenManager using secretKey and TokenLifetime.
func NewTokenManager(secretKey []byte) *TokenManager {
	return &TokenManager{secretKey: secretKey, lifetime: TokenLifetime, now: time.Now}
}

// Lifetime reports how long issued tokens stay valid.
func (m *TokenManager) Lifetime() time.Duration { return m.lifetime }

// Issue signs a token for id that expires exactly Lifetime after now.
func (m *TokenManager) Issue(id Identity) (string, error) {
	issuedAt := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.lifetime)),
		},
		UserID:   id.UserID,
		Username: id.Username,
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString. Expired tokens
// yield common.ErrTokenExpired; anything else wrong yields
// common.ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return Identity{}, common.ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

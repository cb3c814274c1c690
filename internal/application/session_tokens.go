package application

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenIssuer = "hacktown-ops"

// sessionClaims are carried by every session token. The jti is the id of
// the persisted session row; the nonce keeps a rotated token distinct from
// its predecessor within the same second.
type sessionClaims struct {
	Admin bool   `json:"adm,omitempty"`
	Nonce string `json:"nnc"`
	jwt.RegisteredClaims
}

// tokenSigner issues and verifies HS256 session tokens. Expiry is checked
// against now instead of the wall clock so tests can move time.
type tokenSigner struct {
	secret []byte
	now    func() time.Time
}

func (t tokenSigner) sign(sessionID string, user User, expiresAt time.Time) (string, error) {
	nonce := make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	claims := sessionClaims{
		Admin: user.IsAdmin,
		Nonce: base64.RawURLEncoding.EncodeToString(nonce),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t tokenSigner) verify(token string) (sessionClaims, error) {
	var claims sessionClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || claims.Issuer != tokenIssuer {
		return sessionClaims{}, ErrUnauthorized
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(t.now()) {
		return claims, ErrSessionExpired
	}
	return claims, nil
}

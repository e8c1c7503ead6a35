package device

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "minicatalog-device"

var ErrInvalidToken = errors.New("invalid device token")

// TokenMaker signs and verifies device tokens. A device token only says
// "this browser is device X"; it identifies no user.
type TokenMaker struct {
	secret []byte
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (t *TokenMaker) New(deviceID string, ttl time.Duration) (string, error) {
	now := t.now()

	claims := jwt.RegisteredClaims{
		Subject:   deviceID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse returns the device id carried by tokenStr.
func (t *TokenMaker) Parse(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || token == nil || !token.Valid || c.Subject == "" {
		return "", ErrInvalidToken
	}

	return c.Subject, nil
}

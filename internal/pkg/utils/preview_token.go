package utils

import (
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type previewClaims struct {
	OrderID string `json:"order_id"`
	jwt.RegisteredClaims
}

// GeneratePreviewToken issues the token that gates releasing a previewed order
// for submission. It is bound to one order and expires with the preview window.
func GeneratePreviewToken(orderID, secret string, ttl time.Duration) (string, error) {
	claims := previewClaims{
		OrderID: orderID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orderID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", exceptions.WrapWithError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevPreviewTokenInvalid)
	}
	return signed, nil
}

// ParsePreviewToken validates the token signature and expiry and returns the
// order id it was issued for.
func ParsePreviewToken(tokenString, secret string) (string, error) {
	claims := &previewClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", exceptions.ErrPreviewTokenInvalid(err)
	}
	return claims.OrderID, nil
}

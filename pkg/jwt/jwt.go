package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "catalog-api"

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("missing signing secret")
)

// DeliveryClaims identifies an outbound webhook delivery so receivers can
// verify it came from this service.
type DeliveryClaims struct {
	WebhookID uint   `json:"webhook_id"`
	Event     string `json:"event"`
	jwt.RegisteredClaims
}

// SignDelivery creates an HS256 token for one webhook delivery.
func SignDelivery(secret []byte, webhookID uint, event string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := &DeliveryClaims{
		WebhookID: webhookID,
		Event:     event,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("webhook:%d", webhookID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateDelivery parses and validates a delivery token
func ValidateDelivery(secret []byte, tokenString string) (*DeliveryClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeliveryClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*DeliveryClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

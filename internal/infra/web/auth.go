package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WebhookClaims is the payload the payment processor signs with the shared
// HS256 secret. UserID identifies the paying account; Event gates which
// notifications activate premium.
type WebhookClaims struct {
	UserID string `json:"user_id"`
	Event  string `json:"event"`
	jwt.RegisteredClaims
}

const EventPaymentSucceeded = "payment_succeeded"

var errMalformedToken = errors.New("malformed bearer token")

// bearerToken extracts the raw JWT from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errMalformedToken
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errMalformedToken
	}
	return parts[1], nil
}

// verifyWebhookToken parses and validates the signed webhook token. Only
// HS256 is accepted; anything else is treated as forged.
func verifyWebhookToken(raw string, secret []byte) (*WebhookClaims, error) {
	claims := &WebhookClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token missing user_id")
	}
	return claims, nil
}

// MintWebhookToken signs a webhook payload. The payment processor side uses
// the same routine; tests lean on it too.
func MintWebhookToken(secret []byte, userID, event string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := WebhookClaims{
		UserID: userID,
		Event:  event,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

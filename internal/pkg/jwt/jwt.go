package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/groupcal/reminder-service/internal/config"
)

type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.Reason)
}

// Manager issues and validates the HMAC bearer tokens the calendar backend
// uses to call the mutation webhook.
type Manager struct {
	secret []byte
}

func NewManager() *Manager {
	return &Manager{secret: []byte(config.Secret())}
}

func (m *Manager) CreateToken(subject string, ttl time.Duration) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (m *Manager) GetSubjectFromToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &InvalidTokenError{Reason: fmt.Sprintf("unexpected signing method %v", t.Header["alg"])}
		}
		return m.secret, nil
	})
	if err != nil {
		var invalidTokenErr *InvalidTokenError
		if errors.As(err, &invalidTokenErr) {
			return "", err
		}
		return "", &InvalidTokenError{Reason: err.Error()}
	}

	return claims.Subject, nil
}

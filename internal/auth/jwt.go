package auth

import (
	"errors"
	"time"

	"github.com/01moynul/medistore/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager signs and validates the HS256 bearer tokens handed out at login.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a new JWT for a given user ID and role.
func (m *TokenManager) GenerateToken(userID int64, role models.Role) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":  userID,                // "sub" (Subject) is the standard claim for User ID
		"role": string(role),          // informational; the middleware re-reads the role from the DB
		"exp":  now.Add(m.ttl).Unix(), // Expiry
		"iat":  now.Unix(),            // Issued At
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT token string.
// It returns the user ID (subject) if the token is valid.
func (m *TokenManager) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything not signed with HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDFloat, ok := claims["sub"].(float64)
		if !ok || userIDFloat <= 0 {
			return 0, errors.New("invalid subject claim")
		}
		return int64(userIDFloat), nil
	}

	return 0, errors.New("invalid token")
}

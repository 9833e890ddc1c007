package services

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	ProfileID string `json:"profile_id"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	jwt.RegisteredClaims
}

// SessionService issues and parses signed session tokens. A token is minted
// once OTP verification succeeds.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService reads the signing secret from JWT_SECRET
func NewSessionService() (*SessionService, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return &SessionService{secret: []byte(secret), ttl: 30 * 24 * time.Hour}, nil
}

// NewSessionServiceWithSecret is used by tests
func NewSessionServiceWithSecret(secret string) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: 30 * 24 * time.Hour}
}

// IssueToken creates a signed token for the profile
func (s *SessionService) IssueToken(profile *models.Profile) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		ProfileID: profile.ProfileID,
		Role:      profile.Role,
		Phone:     profile.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ProfileID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token and returns its claims
func (s *SessionService) ParseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

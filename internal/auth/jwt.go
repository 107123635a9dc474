package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleService is the role carried by tokens issued to the service account.
const RoleService = "service"

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds JWT claims: subject is the account name.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles token generation and validation.
type JWTService struct {
	secret        []byte
	expireMinutes int
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, expireMinutes int) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		expireMinutes: expireMinutes,
	}
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return time.Duration(s.expireMinutes) * time.Minute
}

// Generate creates a new JWT for the subject.
func (s *JWTService) Generate(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a JWT, returning claims or error.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

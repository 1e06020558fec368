package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Amo12312/accordai/models"
)

// TokenClaims is the validated identity extracted from a bearer token.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsPremium bool   `json:"is_premium"`
}

// JWTService issues and validates bearer tokens.
type JWTService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
}

type jwtService struct {
	secretKey string
	duration  time.Duration
}

// NewJWTService creates a JWTService signing HS256 tokens with secretKey.
func NewJWTService(secretKey string, duration time.Duration) JWTService {
	return &jwtService{secretKey: secretKey, duration: duration}
}

type jwtClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsPremium bool   `json:"is_premium"`
	jwt.RegisteredClaims
}

func (j *jwtService) GenerateToken(user *models.User) (string, error) {
	claims := jwtClaims{
		UserID:    user.ID,
		Email:     user.Email,
		IsPremium: user.IsPremium,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*jwtClaims); ok && token.Valid {
		return &TokenClaims{
			UserID:    claims.UserID,
			Email:     claims.Email,
			IsPremium: claims.IsPremium,
		}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prem22k/c3-backend/logger"
)

const (
	RoleAdmin = "admin"
	tokenTTL  = 24 * time.Hour
)

var ErrMissingSecret = errors.New("jwt secret not configured")

// UserClaims is the payload of admin session tokens.
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an HS256 token valid for 24 hours.
func GenerateJWT(secret []byte, userID, email, role string) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[auth] Failed to sign JWT for %s: %v", email, err))
		return "", err
	}

	logger.Log.Info(fmt.Sprintf("[auth] Successfully generated JWT for %s (Role: %s).", email, role))
	return tokenString, nil
}

// ParseJWT validates the signature and expiry and returns the claims.
func ParseJWT(secret []byte, tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

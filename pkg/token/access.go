package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"prize_wheel/internal/model"
)

// GenerateAccessToken - HS256 token whose subject is the session ID
func GenerateAccessToken(sessionID string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := model.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretKey)
}

func VerifyToken(tokenStr string, secretKey []byte) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, errors.New("unexpected token signing method")
		}

		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || len(claims.Subject) == 0 {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

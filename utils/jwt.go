package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func GenerateJWT(secret string, userID int, name, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid":  userID,
		"name": name,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
		"iss":  "buildlink-backend",
		"sub":  "user-auth",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(secret, tokenStr string) (int, string, string, error) {
	if tokenStr == "" {
		return 0, "", "", errors.New("token is empty")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return 0, "", "", errors.New("invalid token")
	}

	if !token.Valid {
		return 0, "", "", errors.New("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", "", errors.New("invalid claims")
	}

	uidF, ok1 := claims["uid"].(float64)
	name, ok2 := claims["name"].(string)
	role, ok3 := claims["role"].(string)
	if !ok1 || !ok2 || !ok3 {
		return 0, "", "", errors.New("bad claims")
	}

	return int(uidF), name, role, nil
}

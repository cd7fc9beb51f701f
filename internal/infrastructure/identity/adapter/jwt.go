package adapter

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v4"

	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/identity/port"
)

// JWTVerifier validates HMAC-signed bearer tokens issued by the platform's
// auth service and extracts the user id claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier builds a verifier for the given signing secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// NewJWTVerifierFromEnv reads the shared secret from JWT_SECRET.
func NewJWTVerifierFromEnv() (*JWTVerifier, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("jwt: JWT_SECRET environment variable is not set")
	}
	return NewJWTVerifier([]byte(secret)), nil
}

var _ port.Verifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", port.ErrInvalidCredential
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", port.ErrInvalidCredential
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", port.ErrInvalidCredential
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", port.ErrInvalidCredential
	}
	return userID, nil
}

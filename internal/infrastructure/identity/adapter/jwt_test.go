package adapter

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/identity/port"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	secret := []byte("test-secret")
	v := NewJWTVerifier(secret)

	token := signToken(t, secret, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	userID, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("user id = %q, want user-123", userID)
	}
}

func TestVerifyRejections(t *testing.T) {
	secret := []byte("test-secret")
	v := NewJWTVerifier(secret)

	cases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", signToken(t, []byte("other-secret"), jwt.MapClaims{"user_id": "u1"})},
		{"missing user claim", signToken(t, secret, jwt.MapClaims{"sub": "u1"})},
		{"expired", signToken(t, secret, jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(tc.token); !errors.Is(err, port.ErrInvalidCredential) {
				t.Errorf("err = %v, want ErrInvalidCredential", err)
			}
		})
	}
}

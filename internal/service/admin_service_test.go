package service

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo77"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	svc := NewAdminService(string(hash), "test-secret", 60)

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login("wrong")
		if !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("err = %v, want ErrInvalidPassword", err)
		}
	})

	t.Run("correct password yields an admin token", func(t *testing.T) {
		tokenString, err := svc.Login("segredo77")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("issued token does not validate: %v", err)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			t.Fatal("missing claims")
		}
		if role, _ := claims["role"].(string); role != "admin" {
			t.Errorf("role = %q, want admin", role)
		}
	})
}

package admin

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	if hashedToken == "" || plainToken == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashAdminToken returns the bcrypt hash to put in ADMIN_TOKEN_HASH.
func HashAdminToken(plainToken string) (string, error) {
	if plainToken == "" {
		return "", fmt.Errorf("admin token is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidControlToken = errors.New("invalid control token")

// ControlClaims entitle the bearer to drive one table's cue ball, rack and size.
type ControlClaims struct {
	Table string `json:"table"`
	jwt.RegisteredClaims
}

// IssueControlToken signs a control token for tableToken valid for ttl.
func IssueControlToken(secret []byte, tableToken string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := ControlClaims{
		Table: tableToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   "table-control",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign control token: %w", err)
	}
	return signed, exp, nil
}

// VerifyControlToken checks the signature, expiry and table binding of signed.
func VerifyControlToken(secret []byte, signed, tableToken string) error {
	if signed == "" {
		return ErrInvalidControlToken
	}

	var claims ControlClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidControlToken, err)
	}
	if claims.Table != tableToken {
		return fmt.Errorf("%w: issued for another table", ErrInvalidControlToken)
	}
	return nil
}

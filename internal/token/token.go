// Package token reads the expiry claim out of Wildberries API keys.
//
// WB keys are JWTs. Only the exp claim is checked here and the signature is
// NOT verified: the key is handed straight to the WB API, which is the actual
// authority on its validity. Anyone turning this into a trust decision must
// add signature verification first.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
)

// ExpiresAt decodes the key without verifying its signature and returns the
// exp claim. A key without an exp claim is reported as invalid.
func ExpiresAt(apiKey string) (time.Time, error) {
	parser := jwt.NewParser()
	tok, _, err := parser.ParseUnverified(apiKey, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("decode api key: %w: %v", domain.ErrInvalidArgument, err)
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, domain.ErrCredentialNoExpiry
	}
	return exp.Time, nil
}

// Validate returns nil when the key decodes and has not expired.
func Validate(apiKey string, now time.Time) error {
	exp, err := ExpiresAt(apiKey)
	if err != nil {
		return err
	}
	if now.After(exp) {
		return domain.ErrCredentialExpired
	}
	return nil
}

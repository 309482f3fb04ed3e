package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier parses and validates the storefront-issued access tokens.
// Tokens are HMAC-signed by the storefront backend with a shared
// secret; the subject claim carries the caller identity.
type Verifier struct {
	Secret    []byte
	Validator TokenValidator
}

// ParseAccessToken verifies the signature and claims of a raw token
// and returns its subject.
func (v Verifier) ParseAccessToken(raw string) (string, error) {
	if len(v.Secret) == 0 {
		return "", errors.New("auth: secret not configured")
	}
	tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, v.Secret), jwt.WithValidate(false))
	if err != nil {
		return "", fmt.Errorf("auth: parse token: %w", err)
	}
	if err := v.Validator.Validate(tok, jwa.HS256, time.Now()); err != nil {
		return "", err
	}
	subject := tok.Subject()
	if subject == "" {
		return "", errors.New("auth: token missing subject")
	}
	return subject, nil
}

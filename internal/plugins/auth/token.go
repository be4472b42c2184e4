package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cinevault/cinevault/internal/apperror"
)

// signingMethod is the one algorithm this server issues and accepts.
// The verifier is pinned to it via jwt.WithValidMethods -- a token whose
// header names any other algorithm (including "none") fails verification
// before its signature is even considered.
var signingMethod = jwt.SigningMethodHS256

// Claims is the payload of an issued access token. The subject is the
// user's stable ID; the username claim is informational only -- the
// verifier re-fetches the current record by ID rather than trusting it.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed access tokens. Tokens are
// self-contained: the server keeps no record of what it issued, and
// validity is entirely a function of signature and expiry.
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	maxLength int
	parser    *jwt.Parser

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewTokenManager creates a token manager with the given symmetric secret,
// token lifetime, and maximum accepted raw token length.
func NewTokenManager(secret string, ttl time.Duration, maxLength int) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		ttl:       ttl,
		maxLength: maxLength,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}
}

// Issue encodes the user's identity into a signed token expiring after
// the configured TTL.
func (m *TokenManager) Issue(user *User) (string, error) {
	issuedAt := m.now().UTC()

	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a raw token string and returns its claims.
// Failures map onto the admission error taxonomy: oversized or garbled
// input and bad signatures are "invalid token", a valid signature past
// its expiry is "token expired". Messages stay terse and uniform so
// responses don't help an attacker classify their failures.
func (m *TokenManager) Verify(raw string) (*Claims, error) {
	// Bound the input before handing it to the parser so a huge payload
	// can't burn CPU on base64 and JSON decoding.
	if raw == "" || (m.maxLength > 0 && len(raw) > m.maxLength) {
		return nil, errInvalidToken()
	}

	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired()
		}
		return nil, errInvalidToken()
	}

	if claims.Subject == "" {
		return nil, errInvalidToken()
	}

	return claims, nil
}

// --- Token failure constructors ---
// All are 401s; only the terse message distinguishes the class for the
// caller (expired prompts a re-login, the rest do not).

func errMissingToken() *apperror.AppError {
	return apperror.NewUnauthorized("missing authorization token")
}

func errInvalidToken() *apperror.AppError {
	return apperror.NewUnauthorized("invalid token")
}

func errTokenExpired() *apperror.AppError {
	return apperror.NewUnauthorized("token expired")
}

func errIdentityGone() *apperror.AppError {
	return apperror.NewUnauthorized("token no longer valid")
}

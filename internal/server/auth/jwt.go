// Package auth issues and verifies the signed tokens used for login and
// email verification, and hashes user passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose separates login tokens from email-verification tokens. A token
// issued for one purpose never verifies for the other.
type Purpose string

const (
	PurposeLogin             Purpose = "login"
	PurposeEmailVerification Purpose = "email_verification"
)

// VerificationTokenValidity is the fixed lifetime of email-verification tokens.
const VerificationTokenValidity = time.Hour

// Claims are the registered claims plus the user identity and token purpose.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string  `json:"uid"`
	UserName string  `json:"name,omitempty"`
	Purpose  Purpose `json:"purpose"`
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID   string
	UserName string
}

// Identity returns the identity carried by c.
func (c *Claims) Identity() *Identity {
	return &Identity{UserID: c.UserID, UserName: c.UserName}
}

// TokenService signs and verifies HS256 tokens with a single secret.
type TokenService struct {
	secret   []byte
	loginTTL time.Duration
	now      func() time.Time
}

type Option func(*TokenService)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService fails when secret is empty or loginTTL is not positive.
func NewTokenService(secret string, loginTTL time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is not configured")
	}
	if loginTTL <= 0 {
		return nil, fmt.Errorf("login token validity must be positive, got %s", loginTTL)
	}

	s := &TokenService{secret: []byte(secret), loginTTL: loginTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) ttl(p Purpose) (time.Duration, error) {
	switch p {
	case PurposeLogin:
		return s.loginTTL, nil
	case PurposeEmailVerification:
		return VerificationTokenValidity, nil
	default:
		return 0, fmt.Errorf("unknown token purpose %q", p)
	}
}

// Issue signs a token for id. Login tokens carry the user name,
// verification tokens only the user id.
func (s *TokenService) Issue(id Identity, purpose Purpose) (string, error) {
	ttl, err := s.ttl(purpose)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  id.UserID,
		Purpose: purpose,
	}
	if purpose == PurposeLogin {
		claims.UserName = id.UserName
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and purpose. Failures are one of
// common.ErrTokenExpired, common.ErrTokenSignatureInvalid or
// common.ErrTokenMalformed, each of which matches common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, purpose Purpose) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", common.ErrTokenSignatureInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
		}
	}

	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: purpose %q, want %q", common.ErrTokenMalformed, claims.Purpose, purpose)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no user id", common.ErrTokenMalformed)
	}

	return claims, nil
}

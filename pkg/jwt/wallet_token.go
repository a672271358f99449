package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "raffle-explorer"

// ErrMissingSecret is returned when a token service is built without a signing secret
var ErrMissingSecret = errors.New("jwt secret is not configured")

// WalletClaims are the claims of a wallet session token. Subject is the wallet public key.
type WalletClaims struct {
	jwt.RegisteredClaims
}

// WalletTokenService issues and parses wallet session tokens
type WalletTokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewWalletTokenService creates a HS256 token service
func NewWalletTokenService(secret string, expiresIn time.Duration) (*WalletTokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &WalletTokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}, nil
}

// Issue signs a token for wallet and returns it with its expiry
func (s *WalletTokenService) Issue(wallet string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiresIn)
	claims := WalletClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign wallet token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates tokenString and returns the wallet it was issued for
func (s *WalletTokenService) Parse(tokenString string) (string, error) {
	var claims WalletClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

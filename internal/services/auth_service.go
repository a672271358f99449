package services

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

var (
	ErrChallengeNotFound = errors.New("no pending challenge for wallet")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPublicKey  = errors.New("invalid wallet public key")
)

// TokenIssuer signs session tokens for verified wallets
type TokenIssuer interface {
	Issue(wallet string) (string, time.Time, error)
}

// AuthService defines the wallet sign-in operations
type AuthService interface {
	Challenge(req *models.ChallengeRequest) (*models.ChallengeResponse, error)
	Verify(req *models.VerifyRequest) (*models.VerifyResponse, error)
}

type pendingChallenge struct {
	message   string
	expiresAt time.Time
}

type authService struct {
	tokens TokenIssuer
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	challenges map[string]pendingChallenge
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(tokens TokenIssuer, ttl time.Duration) AuthService {
	return newAuthService(tokens, ttl, time.Now)
}

func newAuthService(tokens TokenIssuer, ttl time.Duration, now func() time.Time) *authService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &authService{
		tokens:     tokens,
		ttl:        ttl,
		now:        now,
		challenges: map[string]pendingChallenge{},
	}
}

func decodePublicKey(publicKey string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(publicKey)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return ed25519.PublicKey(raw), nil
}

// Challenge issues a one-time sign-in message for the wallet. A new challenge replaces a pending one.
func (s *authService) Challenge(req *models.ChallengeRequest) (*models.ChallengeResponse, error) {
	if _, err := decodePublicKey(req.PublicKey); err != nil {
		return nil, err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	pending := pendingChallenge{
		message:   fmt.Sprintf("Sign in to Raffle Explorer\nWallet: %s\nNonce: %s\nIssued: %s", req.PublicKey, hex.EncodeToString(nonce), now.UTC().Format(time.RFC3339)),
		expiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.challenges[req.PublicKey] = pending
	s.mu.Unlock()

	return &models.ChallengeResponse{Message: pending.message, ExpiresAt: pending.expiresAt}, nil
}

// Verify checks the signature over the pending challenge and issues a session token.
// A challenge is consumed by its first verification attempt.
func (s *authService) Verify(req *models.VerifyRequest) (*models.VerifyResponse, error) {
	publicKey, err := decodePublicKey(req.PublicKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pending, ok := s.challenges[req.PublicKey]
	delete(s.challenges, req.PublicKey)
	s.mu.Unlock()

	if !ok {
		return nil, ErrChallengeNotFound
	}
	if !s.now().Before(pending.expiresAt) {
		return nil, ErrChallengeExpired
	}

	signature, err := base58.Decode(req.Signature)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return nil, ErrInvalidSignature
	}
	if !ed25519.Verify(publicKey, []byte(pending.message), signature) {
		logger.Warn("wallet signature rejected", zap.String("wallet", req.PublicKey))
		return nil, ErrInvalidSignature
	}

	token, expiresAt, err := s.tokens.Issue(req.PublicKey)
	if err != nil {
		return nil, err
	}
	logger.Info("wallet signed in", zap.String("wallet", req.PublicKey))
	return &models.VerifyResponse{Token: token, Wallet: req.PublicKey, ExpiresAt: expiresAt}, nil
}

func (s *authService) pruneLocked(now time.Time) {
	for wallet, pending := range s.challenges {
		if !now.Before(pending.expiresAt) {
			delete(s.challenges, wallet)
		}
	}
}

package models

import "time"

// ChallengeRequest asks for a sign-in message for a wallet
type ChallengeRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
}

// ChallengeResponse carries the message the wallet has to sign
type ChallengeResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyRequest carries the signed challenge. Both fields are base58.
type VerifyRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyResponse carries the session token of the wallet
type VerifyResponse struct {
	Token     string    `json:"token"`
	Wallet    string    `json:"wallet"`
	ExpiresAt time.Time `json:"expiresAt"`
}

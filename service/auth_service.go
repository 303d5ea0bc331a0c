package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/internal/eth"
	"github.com/agorafi/marketplace/ports"
)

const (
	// DefaultNonceTTL bounds how long an issued nonce stays valid.
	DefaultNonceTTL = 5 * time.Minute

	// DefaultSessionTTL is the lifetime of a session token.
	DefaultSessionTTL = 24 * time.Hour
)

// AuthService handles the nonce challenge/response wallet authentication.
type AuthService struct {
	nonces    ports.NonceStore
	tokenizer ports.Tokenizer
	log       *logrus.Entry

	nonceTTL   time.Duration
	sessionTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(nonces ports.NonceStore, tokenizer ports.Tokenizer) *AuthService {
	return &AuthService{
		nonces:     nonces,
		tokenizer:  tokenizer,
		log:        logrus.WithField("service", "auth"),
		nonceTTL:   DefaultNonceTTL,
		sessionTTL: DefaultSessionTTL,
	}
}

// IssueNonce generates a fresh nonce for an address, replacing any prior
// one. The wallet proves key control by signing the challenge embedding it.
func (s *AuthService) IssueNonce(ctx context.Context, address string) (string, error) {
	if err := core.ValidateAddress(address); err != nil {
		return "", err
	}

	nonce := uuid.New().String()
	if err := s.nonces.Put(ctx, address, nonce, s.nonceTTL); err != nil {
		s.log.WithError(err).Error("failed to store nonce")
		return "", core.ErrInternal("failed to issue nonce")
	}

	return nonce, nil
}

// Verify checks a wallet's signature over the current challenge for
// address and, on success, consumes the nonce and mints a session token.
// The nonce is deleted with a compare-and-delete, so a concurrent replay of
// the same signature cannot also succeed.
func (s *AuthService) Verify(ctx context.Context, address, signature string) (string, error) {
	if err := core.ValidateAddress(address); err != nil {
		return "", err
	}
	if signature == "" {
		return "", core.ErrValidation("signature is required")
	}

	nonce, err := s.nonces.Get(ctx, address)
	if err != nil {
		if core.IsCode(err, core.CodeNotFound) {
			return "", core.ErrNotFound("no nonce found, request one first")
		}
		s.log.WithError(err).Error("failed to read nonce")
		return "", core.ErrInternal("failed to verify signature")
	}

	message := core.FormatChallenge(nonce)
	recovered, err := eth.RecoverPersonalSigner(message, signature)
	if err != nil {
		return "", core.ErrUnauthorized("invalid signature")
	}
	if !strings.EqualFold(recovered.Hex(), address) {
		return "", core.ErrUnauthorized("signature verification failed")
	}

	consumed, err := s.nonces.CompareAndDelete(ctx, address, nonce)
	if err != nil {
		s.log.WithError(err).Error("failed to consume nonce")
		return "", core.ErrInternal("failed to verify signature")
	}
	if !consumed {
		// A concurrent verification won the race for this nonce.
		return "", core.ErrNotFound("no nonce found, request one first")
	}

	now := time.Now().UTC()
	session := &core.Session{
		Address:   core.NormalizeWallet(address),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		s.log.WithError(err).Error("failed to mint session token")
		return "", core.ErrInternal("failed to create session")
	}

	return token, nil
}

// ValidateToken resolves a bearer token to the wallet address it is bound
// to. Consumed by the HTTP middleware; registry operations only ever see
// the resolved actor wallet.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", core.ErrUnauthorized("missing token")
	}

	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return "", err
	}
	if time.Now().After(session.ExpiresAt) {
		return "", core.ErrUnauthorized("token expired")
	}

	return core.NormalizeWallet(session.Address), nil
}

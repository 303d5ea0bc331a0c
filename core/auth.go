package core

import (
	"fmt"
	"regexp"
	"time"
)

// ChallengeMessage is the canonical text a wallet signs to authenticate.
// The embedded nonce makes every challenge single-use.
const ChallengeMessage = "Sign this message to authenticate with AGORAFI.\n\nNonce: %s"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateAddress checks that address looks like a hex Ethereum address.
func ValidateAddress(address string) error {
	if address == "" {
		return ErrValidation("address is required")
	}
	if !addressPattern.MatchString(address) {
		return ErrValidation("invalid wallet address")
	}
	return nil
}

// FormatChallenge builds the message a wallet must sign for the given nonce.
func FormatChallenge(nonce string) string {
	return fmt.Sprintf(ChallengeMessage, nonce)
}

// Challenge is a single-use nonce issued to a wallet address. One per
// address; overwritten on re-issue and deleted on successful verification.
type Challenge struct {
	Address  string    // lowercase wallet address the nonce is bound to
	Nonce    string    // random value to be signed
	IssuedAt time.Time // when the challenge was created
}

// Session is an authenticated wallet session. It is self-contained: the
// server keeps no state beyond the signed token the client holds.
type Session struct {
	Address   string    // lowercase wallet address
	IssuedAt  time.Time // when the session was created
	ExpiresAt time.Time // when the session expires
}

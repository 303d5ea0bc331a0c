// Package eth wraps go-ethereum's EIP-191 personal-message signing and
// recovery, the only signature scheme the authentication flow accepts.
package eth

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrMalformedSignature is returned when the signature cannot be decoded
// into the 65-byte r||s||v form.
var ErrMalformedSignature = errors.New("malformed signature")

// RecoverPersonalSigner recovers the address that signed message with
// personal_sign semantics: the message is prefixed and keccak-hashed per
// EIP-191 before public-key recovery.
func RecoverPersonalSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, ErrMalformedSignature
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrMalformedSignature
	}

	// Wallets return v as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, ErrMalformedSignature
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignPersonal signs message with personal_sign semantics, producing the
// hex signature a wallet would return. Used by tests and tooling.
func SignPersonal(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

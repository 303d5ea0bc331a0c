package core

import "strings"

// NormalizeWallet lowercases a wallet address. All wallets are stored and
// compared in lowercase form.
func NormalizeWallet(address string) string {
	return strings.ToLower(address)
}

// RequireActor checks that the acting wallet owns the entity. Every
// ownership check in the listing, offer and space paths goes through here.
func RequireActor(actor, owner, message string) error {
	if !strings.EqualFold(actor, owner) {
		return ErrForbidden(message)
	}
	return nil
}

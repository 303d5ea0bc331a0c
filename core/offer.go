package core

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusCancelled OfferStatus = "cancelled"
	OfferStatusExpired   OfferStatus = "expired"
)

// Offer is a prospective buyer's bid against a specific listing. SpaceID
// and TokenID are denormalized copies taken from the listing at creation
// time and never re-validated afterward. Status only ever moves
// pending -> {accepted, rejected, cancelled, expired}; terminal states are
// immutable.
//
// ExpiresAt is recorded but carries no enforcement path: nothing
// transitions a stale offer to expired. That matches the upstream service
// and is asserted by TestOfferExpiryIsNotEnforced.
type Offer struct {
	ID            string      `json:"id" badgerhold:"key"`
	ListingID     string      `json:"listing_id"`
	SpaceID       string      `json:"space_id"`
	TokenID       int64       `json:"token_id"`
	OffererWallet string      `json:"offerer_wallet"`
	Amount        string      `json:"amount"`
	Currency      string      `json:"currency"`
	Status        OfferStatus `json:"status"`
	ExpiresAt     time.Time   `json:"expires_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewOffer creates a pending offer against the given listing. The listing
// must be active and not owned by the offerer; both are checked here so
// every creation path enforces them.
func NewOffer(offerer string, listing *Listing, amount, currency string, expiresAt time.Time) (*Offer, error) {
	if !listing.IsActive() {
		return nil, ErrInvalidState("listing is not active")
	}

	wallet := NormalizeWallet(offerer)
	if wallet == listing.SellerWallet {
		return nil, ErrInvalidState("cannot make an offer on your own listing")
	}
	if _, err := ParseAmount(amount); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now().UTC()
	return &Offer{
		ID:            uuid.New().String(),
		ListingID:     listing.ID,
		SpaceID:       listing.SpaceID,
		TokenID:       listing.TokenID,
		OffererWallet: wallet,
		Amount:        amount,
		Currency:      currency,
		Status:        OfferStatusPending,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsPending reports whether the offer can still transition.
func (o *Offer) IsPending() bool {
	return o.Status == OfferStatusPending
}

// Cancel moves a pending offer to cancelled.
func (o *Offer) Cancel() error {
	if !o.IsPending() {
		return ErrInvalidState("can only cancel pending offers")
	}
	o.Status = OfferStatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Accept moves a pending offer to accepted.
func (o *Offer) Accept() error {
	if !o.IsPending() {
		return ErrInvalidState("can only accept pending offers")
	}
	o.Status = OfferStatusAccepted
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject moves a pending offer to rejected. Rejecting one offer never
// touches its siblings; only a sale does.
func (o *Offer) Reject() error {
	if !o.IsPending() {
		return ErrInvalidState("can only reject pending offers")
	}
	o.Status = OfferStatusRejected
	o.UpdatedAt = time.Now().UTC()
	return nil
}

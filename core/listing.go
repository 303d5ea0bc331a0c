package core

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusExpired   ListingStatus = "expired"
)

// DefaultCurrency is applied when a listing or offer omits the currency.
const DefaultCurrency = "ETH"

// Listing is a seller's standing, cancellable offer to sell one tile at a
// fixed price. At most one active listing may exist per (space_id,
// token_id); status only ever moves active -> {sold, cancelled, expired}
// and terminal states are immutable.
type Listing struct {
	ID           string        `json:"id" badgerhold:"key"`
	SpaceID      string        `json:"space_id"`
	TokenID      int64         `json:"token_id"`
	SellerWallet string        `json:"seller_wallet"`
	Price        string        `json:"price"`
	Currency     string        `json:"currency"`
	Status       ListingStatus `json:"status"`
	ExpiresAt    *time.Time    `json:"expires_at"`
	SoldAt       *time.Time    `json:"sold_at"`
	BuyerWallet  *string       `json:"buyer_wallet"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewListing creates an active listing for the given tile.
func NewListing(seller, spaceID string, tokenID int64, price, currency string, expiresAt *time.Time) (*Listing, error) {
	if _, err := ParseAmount(price); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now().UTC()
	return &Listing{
		ID:           uuid.New().String(),
		SpaceID:      spaceID,
		TokenID:      tokenID,
		SellerWallet: NormalizeWallet(seller),
		Price:        price,
		Currency:     currency,
		Status:       ListingStatusActive,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive reports whether the listing can still be bought or mutated.
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// IsPastExpiry reports whether the listing's optional expiry is in the
// past. Expiry is only ever evaluated on access, never by a sweep.
func (l *Listing) IsPastExpiry(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// SetPrice replaces the asking price while the listing is active.
func (l *Listing) SetPrice(price string) error {
	if !l.IsActive() {
		return ErrInvalidState("can only update active listings")
	}
	if _, err := ParseAmount(price); err != nil {
		return err
	}
	l.Price = price
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// SetExpiry replaces or clears the expiry while the listing is active.
func (l *Listing) SetExpiry(expiresAt *time.Time) error {
	if !l.IsActive() {
		return ErrInvalidState("can only update active listings")
	}
	l.ExpiresAt = expiresAt
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel moves an active listing to cancelled. Not a sale, so no buyer is
// recorded.
func (l *Listing) Cancel() error {
	if !l.IsActive() {
		return ErrInvalidState("can only cancel active listings")
	}
	l.Status = ListingStatusCancelled
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSold moves an active listing to sold, recording the buyer.
func (l *Listing) MarkSold(buyer string) error {
	if !l.IsActive() {
		return ErrInvalidState("listing is no longer active")
	}
	now := time.Now().UTC()
	wallet := NormalizeWallet(buyer)
	l.Status = ListingStatusSold
	l.BuyerWallet = &wallet
	l.SoldAt = &now
	l.UpdatedAt = now
	return nil
}

// MarkExpired flips an active listing whose expiry has passed.
func (l *Listing) MarkExpired() error {
	if !l.IsActive() {
		return ErrInvalidState("listing is no longer active")
	}
	l.Status = ListingStatusExpired
	l.UpdatedAt = time.Now().UTC()
	return nil
}

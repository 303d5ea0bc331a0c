package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agorafi/marketplace/adapters/store"
	"github.com/agorafi/marketplace/core"
)

const (
	sellerWallet = "0xaaaa000000000000000000000000000000000001"
	buyerWallet  = "0xbbbb000000000000000000000000000000000002"
	otherWallet  = "0xcccc000000000000000000000000000000000003"
)

// recorderPublisher captures published events for assertions.
type recorderPublisher struct {
	mu     sync.Mutex
	events []string
}

func (r *recorderPublisher) Publish(ctx context.Context, event string, payload any, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorderPublisher) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fixture struct {
	repo     *store.MemoryManager
	events   *recorderPublisher
	listings *ListingService
	offers   *OfferService
	spaces   *SpaceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := store.NewMemoryManager()
	t.Cleanup(func() { repo.Close() })

	events := &recorderPublisher{}
	marketplace := NewMarketplace(repo)

	return &fixture{
		repo:     repo,
		events:   events,
		listings: NewListingService(repo, marketplace, events),
		offers:   NewOfferService(repo, marketplace, events),
		spaces:   NewSpaceService(repo, events),
	}
}

func (f *fixture) activeListing(t *testing.T, spaceID string, tokenID int64, price string) *core.Listing {
	t.Helper()
	listing, err := f.listings.Create(context.Background(), sellerWallet, CreateListingParams{
		SpaceID: spaceID,
		TokenID: tokenID,
		Price:   price,
	})
	require.NoError(t, err)
	return listing
}

func (f *fixture) pendingOffer(t *testing.T, offerer, listingID, amount string) *core.Offer {
	t.Helper()
	offer, err := f.offers.Create(context.Background(), offerer, CreateOfferParams{
		ListingID: listingID,
		Amount:    amount,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return offer
}

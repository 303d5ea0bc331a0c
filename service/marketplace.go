package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// resolveSaleAttempts bounds the optimistic retry on storage contention
// before the sale is reported as lost.
const resolveSaleAttempts = 3

// Marketplace owns the single cross-entity atomic transition: finalizing a
// sale. Both direct purchase and offer acceptance are thin callers of
// ResolveSale, so there is exactly one code path that can ever mark a
// listing sold.
type Marketplace struct {
	repo ports.RepoManager
	log  *logrus.Entry
}

// NewMarketplace creates the sale coordinator.
func NewMarketplace(repo ports.RepoManager) *Marketplace {
	return &Marketplace{
		repo: repo,
		log:  logrus.WithField("service", "marketplace"),
	}
}

// ResolveSale atomically: re-checks the listing is still active, marks it
// sold to winner, rejects every other pending offer on it, and accepts the
// winning offer when one is given. If the re-check fails nothing takes
// effect. Returns the sold listing and, when winningOfferID is set, the
// accepted offer.
func (m *Marketplace) ResolveSale(ctx context.Context, listingID, winner string, winningOfferID *string) (*core.Listing, *core.Offer, error) {
	var lastErr error
	for attempt := 0; attempt < resolveSaleAttempts; attempt++ {
		listing, accepted, err := m.trySale(ctx, listingID, winner, winningOfferID)
		if err == nil || !m.repo.IsConflict(err) {
			return listing, accepted, err
		}
		lastErr = err
		m.log.WithField("listing_id", listingID).WithField("attempt", attempt+1).
			Debug("sale transaction conflicted, retrying")
	}

	m.log.WithError(lastErr).WithField("listing_id", listingID).
		Warn("sale lost after repeated storage contention")
	return nil, nil, core.ErrInvalidState("listing is no longer active")
}

func (m *Marketplace) trySale(ctx context.Context, listingID, winner string, winningOfferID *string) (*core.Listing, *core.Offer, error) {
	var (
		sold     *core.Listing
		accepted *core.Offer
	)

	err := m.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		listing, err := m.repo.Listings().Get(txCtx, listingID)
		if err != nil {
			return err
		}
		if err := listing.MarkSold(winner); err != nil {
			return err
		}

		pending, err := m.repo.Offers().PendingByListing(txCtx, listingID)
		if err != nil {
			return err
		}
		for i := range pending {
			offer := pending[i]
			if winningOfferID != nil && offer.ID == *winningOfferID {
				continue
			}
			if err := offer.Reject(); err != nil {
				return err
			}
			if err := m.repo.Offers().Update(txCtx, &offer); err != nil {
				return err
			}
		}

		if winningOfferID != nil {
			offer, err := m.repo.Offers().Get(txCtx, *winningOfferID)
			if err != nil {
				return err
			}
			if err := offer.Accept(); err != nil {
				return err
			}
			if err := m.repo.Offers().Update(txCtx, offer); err != nil {
				return err
			}
			accepted = offer
		}

		if err := m.repo.Listings().Update(txCtx, listing); err != nil {
			return err
		}
		sold = listing
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return sold, accepted, nil
}

package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// OfferService owns the offer lifecycle, scoped to a listing.
type OfferService struct {
	repo        ports.RepoManager
	marketplace *Marketplace
	events      ports.EventPublisher
	log         *logrus.Entry
}

// NewOfferService creates a new offer service.
func NewOfferService(repo ports.RepoManager, marketplace *Marketplace, events ports.EventPublisher) *OfferService {
	return &OfferService{
		repo:        repo,
		marketplace: marketplace,
		events:      events,
		log:         logrus.WithField("service", "offers"),
	}
}

// CreateOfferParams is the validated input for making an offer.
type CreateOfferParams struct {
	ListingID string
	Amount    string
	Currency  string
	ExpiresAt time.Time
}

// Create places a bid against an active listing. The listing's space and
// token ids are copied onto the offer at creation time and never
// re-validated afterward.
func (s *OfferService) Create(ctx context.Context, offerer string, params CreateOfferParams) (*core.Offer, error) {
	if params.ListingID == "" {
		return nil, core.ErrValidation("listing id is required")
	}
	if len(params.Currency) > 10 {
		return nil, core.ErrValidation("currency must be at most 10 characters")
	}
	if params.ExpiresAt.IsZero() {
		return nil, core.ErrValidation("expiry is required")
	}

	listing, err := s.repo.Listings().Get(ctx, params.ListingID)
	if err != nil {
		return nil, err
	}

	offer, err := core.NewOffer(offerer, listing, params.Amount, params.Currency, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Offers().Add(ctx, offer); err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventOfferCreated, offer, offer.SpaceID)
	return offer, nil
}

// List returns offers ordered by amount descending, earliest bid first on
// ties.
func (s *OfferService) List(ctx context.Context, query ports.ListOffersQuery) ([]core.Offer, error) {
	return s.repo.Offers().Find(ctx, query)
}

// Get returns an offer by id.
func (s *OfferService) Get(ctx context.Context, id string) (*core.Offer, error) {
	return s.repo.Offers().Get(ctx, id)
}

// Cancel withdraws a pending offer, offerer only.
func (s *OfferService) Cancel(ctx context.Context, id, actor string) (*core.Offer, error) {
	var cancelled *core.Offer
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		offer, err := s.repo.Offers().Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, offer.OffererWallet, "only the offerer can cancel this offer"); err != nil {
			return err
		}
		if err := offer.Cancel(); err != nil {
			return err
		}
		if err := s.repo.Offers().Update(txCtx, offer); err != nil {
			return err
		}
		cancelled = offer
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventOfferCancelled, cancelled, cancelled.SpaceID)
	return cancelled, nil
}

// Accept sells the listing to this offer's maker, listing seller only.
// Delegates the terminal transition to the marketplace coordinator, which
// also rejects every sibling pending offer atomically.
func (s *OfferService) Accept(ctx context.Context, id, actor string) (*core.Offer, error) {
	offer, err := s.repo.Offers().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !offer.IsPending() {
		return nil, core.ErrInvalidState("can only accept pending offers")
	}

	listing, err := s.repo.Listings().Get(ctx, offer.ListingID)
	if err != nil {
		if core.IsCode(err, core.CodeNotFound) {
			return nil, core.ErrForbidden("only the listing seller can accept offers")
		}
		return nil, err
	}
	if err := core.RequireActor(actor, listing.SellerWallet, "only the listing seller can accept offers"); err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return nil, core.ErrInvalidState("listing is no longer active")
	}

	_, accepted, err := s.marketplace.ResolveSale(ctx, listing.ID, offer.OffererWallet, &offer.ID)
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventOfferAccepted, accepted, accepted.SpaceID)
	return accepted, nil
}

// Reject declines a single pending offer, listing seller only. Never
// touches sibling offers; only a sale does that.
func (s *OfferService) Reject(ctx context.Context, id, actor string) (*core.Offer, error) {
	var rejected *core.Offer
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		offer, err := s.repo.Offers().Get(txCtx, id)
		if err != nil {
			return err
		}
		if !offer.IsPending() {
			return core.ErrInvalidState("can only reject pending offers")
		}

		listing, err := s.repo.Listings().Get(txCtx, offer.ListingID)
		if err != nil {
			if core.IsCode(err, core.CodeNotFound) {
				return core.ErrForbidden("only the listing seller can reject offers")
			}
			return err
		}
		if err := core.RequireActor(actor, listing.SellerWallet, "only the listing seller can reject offers"); err != nil {
			return err
		}

		if err := offer.Reject(); err != nil {
			return err
		}
		if err := s.repo.Offers().Update(txCtx, offer); err != nil {
			return err
		}
		rejected = offer
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventOfferRejected, rejected, rejected.SpaceID)
	return rejected, nil
}

package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// ListingService owns the listing lifecycle and the one-active-listing-
// per-tile invariant.
type ListingService struct {
	repo        ports.RepoManager
	marketplace *Marketplace
	events      ports.EventPublisher
	log         *logrus.Entry
}

// NewListingService creates a new listing service.
func NewListingService(repo ports.RepoManager, marketplace *Marketplace, events ports.EventPublisher) *ListingService {
	return &ListingService{
		repo:        repo,
		marketplace: marketplace,
		events:      events,
		log:         logrus.WithField("service", "listings"),
	}
}

// CreateListingParams is the validated input for creating a listing.
type CreateListingParams struct {
	SpaceID   string
	TokenID   int64
	Price     string
	Currency  string
	ExpiresAt *time.Time
}

// Create makes seller's tile available at a fixed price. Fails with a
// conflict if an active listing already exists for the same tile; the
// check and insert run in one transaction so concurrent creates cannot
// both pass.
func (s *ListingService) Create(ctx context.Context, seller string, params CreateListingParams) (*core.Listing, error) {
	if params.SpaceID == "" || len(params.SpaceID) > 100 {
		return nil, core.ErrValidation("space id is required")
	}
	if params.TokenID < 0 {
		return nil, core.ErrValidation("token id must not be negative")
	}
	if len(params.Currency) > 10 {
		return nil, core.ErrValidation("currency must be at most 10 characters")
	}

	listing, err := core.NewListing(seller, params.SpaceID, params.TokenID, params.Price, params.Currency, params.ExpiresAt)
	if err != nil {
		return nil, err
	}

	err = s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		existing, err := s.repo.Listings().ActiveListingForTile(txCtx, params.SpaceID, params.TokenID)
		if err != nil {
			return err
		}
		if existing != nil {
			return core.ErrConflict("an active listing already exists for this tile")
		}
		return s.repo.Listings().Add(txCtx, listing)
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventListingCreated, listing, listing.SpaceID)
	return listing, nil
}

// List returns a filtered, ordered page of listings. Status defaults to
// active. Listing reads never perform the lazy expiry rewrite; only an
// individual purchase touch does.
func (s *ListingService) List(ctx context.Context, query ports.ListListingsQuery) ([]core.Listing, error) {
	if query.Status == "" {
		query.Status = core.ListingStatusActive
	}
	return s.repo.Listings().Find(ctx, query)
}

// Get returns a listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*core.Listing, error) {
	return s.repo.Listings().Get(ctx, id)
}

// UpdateListingParams carries the optional fields of a listing update.
// ClearExpiry distinguishes an explicit null from an omitted field.
type UpdateListingParams struct {
	Price       *string
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// Update changes price and/or expiry of an active listing, seller only.
func (s *ListingService) Update(ctx context.Context, id, actor string, params UpdateListingParams) (*core.Listing, error) {
	if params.Price == nil && params.ExpiresAt == nil && !params.ClearExpiry {
		return nil, core.ErrValidation("no fields to update")
	}

	var updated *core.Listing
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		listing, err := s.repo.Listings().Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, listing.SellerWallet, "only the seller can update this listing"); err != nil {
			return err
		}

		if params.Price != nil {
			if err := listing.SetPrice(*params.Price); err != nil {
				return err
			}
		}
		if params.ExpiresAt != nil || params.ClearExpiry {
			expiry := params.ExpiresAt
			if params.ClearExpiry {
				expiry = nil
			}
			if err := listing.SetExpiry(expiry); err != nil {
				return err
			}
		}

		if err := s.repo.Listings().Update(txCtx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventListingUpdated, updated, updated.SpaceID)
	return updated, nil
}

// Cancel withdraws an active listing, seller only. Every pending offer on
// it transitions to rejected in the same transaction. Not a sale, so no
// buyer is recorded.
func (s *ListingService) Cancel(ctx context.Context, id, actor string) (*core.Listing, error) {
	var cancelled *core.Listing
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		listing, err := s.repo.Listings().Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, listing.SellerWallet, "only the seller can cancel this listing"); err != nil {
			return err
		}
		if err := listing.Cancel(); err != nil {
			return err
		}

		pending, err := s.repo.Offers().PendingByListing(txCtx, id)
		if err != nil {
			return err
		}
		for i := range pending {
			offer := pending[i]
			if err := offer.Reject(); err != nil {
				return err
			}
			if err := s.repo.Offers().Update(txCtx, &offer); err != nil {
				return err
			}
		}

		if err := s.repo.Listings().Update(txCtx, listing); err != nil {
			return err
		}
		cancelled = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventListingCancelled, cancelled, cancelled.SpaceID)
	return cancelled, nil
}

// Purchase buys an active listing at its asking price. A listing whose
// expiry has passed is flipped to expired as a side effect and the
// purchase fails; expiry is only ever evaluated here, on touch, never by a
// background process. Off-chain bookkeeping only: no value transfer is
// initiated.
func (s *ListingService) Purchase(ctx context.Context, id, actor string) (*core.Listing, error) {
	listing, err := s.repo.Listings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return nil, core.ErrInvalidState("this listing is no longer active")
	}
	if core.NormalizeWallet(actor) == listing.SellerWallet {
		return nil, core.ErrInvalidState("cannot purchase your own listing")
	}
	if listing.IsPastExpiry(time.Now()) {
		if err := s.expire(ctx, id); err != nil {
			s.log.WithError(err).WithField("listing_id", id).Warn("failed to flip expired listing")
		}
		return nil, core.ErrInvalidState("this listing has expired")
	}

	sold, _, err := s.marketplace.ResolveSale(ctx, id, actor, nil)
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventListingSold, sold, sold.SpaceID)
	return sold, nil
}

// expire performs the lazy flip of a past-expiry listing.
func (s *ListingService) expire(ctx context.Context, id string) error {
	return s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		listing, err := s.repo.Listings().Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := listing.MarkExpired(); err != nil {
			return err
		}
		return s.repo.Listings().Update(txCtx, listing)
	})
}

package store

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

type listingRepository struct {
	store *badgerhold.Store
}

func (r listingRepository) Add(ctx context.Context, listing *core.Listing) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxInsert(tx, listing.ID, listing)
	}
	return r.store.Insert(listing.ID, listing)
}

func (r listingRepository) Get(ctx context.Context, id string) (*core.Listing, error) {
	var listing core.Listing
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxGet(tx, id, &listing)
	} else {
		err = r.store.Get(id, &listing)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, core.ErrNotFound("listing not found")
		}
		return nil, err
	}
	return &listing, nil
}

func (r listingRepository) Update(ctx context.Context, listing *core.Listing) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, listing.ID, listing)
	}
	return r.store.Update(listing.ID, listing)
}

func (r listingRepository) Find(ctx context.Context, q ports.ListListingsQuery) ([]core.Listing, error) {
	query := newQuery()
	if q.SpaceID != "" {
		query.where("SpaceID", q.SpaceID)
	}
	if q.Status != "" {
		query.where("Status", q.Status)
	}

	listings := []core.Listing{}
	if err := r.find(ctx, &listings, query.build()); err != nil {
		return nil, err
	}

	sortListings(listings, q.Sort)
	return paginate(listings, q.Limit, q.Offset), nil
}

func (r listingRepository) ActiveListingForTile(ctx context.Context, spaceID string, tokenID int64) (*core.Listing, error) {
	query := badgerhold.Where("SpaceID").Eq(spaceID).
		And("TokenID").Eq(tokenID).
		And("Status").Eq(core.ListingStatusActive)

	var listings []core.Listing
	if err := r.find(ctx, &listings, query); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}
	return &listings[0], nil
}

func (r listingRepository) find(ctx context.Context, result *[]core.Listing, query *badgerhold.Query) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxFind(tx, result, query)
	}
	return r.store.Find(result, query)
}

package store

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

type offerRepository struct {
	store *badgerhold.Store
}

func (r offerRepository) Add(ctx context.Context, offer *core.Offer) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxInsert(tx, offer.ID, offer)
	}
	return r.store.Insert(offer.ID, offer)
}

func (r offerRepository) Get(ctx context.Context, id string) (*core.Offer, error) {
	var offer core.Offer
	var err error
	if tx, ok := txFromContext(ctx); ok {
		err = r.store.TxGet(tx, id, &offer)
	} else {
		err = r.store.Get(id, &offer)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, core.ErrNotFound("offer not found")
		}
		return nil, err
	}
	return &offer, nil
}

func (r offerRepository) Update(ctx context.Context, offer *core.Offer) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, offer.ID, offer)
	}
	return r.store.Update(offer.ID, offer)
}

func (r offerRepository) Find(ctx context.Context, q ports.ListOffersQuery) ([]core.Offer, error) {
	query := newQuery()
	if q.ListingID != "" {
		query.where("ListingID", q.ListingID)
	}
	if q.Status != "" {
		query.where("Status", q.Status)
	}
	if q.Offerer != "" {
		query.where("OffererWallet", core.NormalizeWallet(q.Offerer))
	}

	offers := []core.Offer{}
	if err := r.find(ctx, &offers, query.build()); err != nil {
		return nil, err
	}

	sortOffers(offers)
	return offers, nil
}

func (r offerRepository) PendingByListing(ctx context.Context, listingID string) ([]core.Offer, error) {
	query := badgerhold.Where("ListingID").Eq(listingID).
		And("Status").Eq(core.OfferStatusPending)

	offers := []core.Offer{}
	if err := r.find(ctx, &offers, query); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r offerRepository) find(ctx context.Context, result *[]core.Offer, query *badgerhold.Query) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxFind(tx, result, query)
	}
	return r.store.Find(result, query)
}

package ports

import (
	"context"
	"time"

	"github.com/agorafi/marketplace/core"
)

// NonceStore issues and atomically consumes single-use per-address nonces.
type NonceStore interface {
	// Put upserts the nonce for an address, replacing any prior one.
	Put(ctx context.Context, address, nonce string, ttl time.Duration) error

	// Get returns the current nonce for an address, or a not-found error.
	Get(ctx context.Context, address string) (string, error)

	// CompareAndDelete removes the nonce only if it still equals the given
	// value, reporting whether the delete happened. Two verifications
	// racing on the same nonce can therefore not both succeed.
	CompareAndDelete(ctx context.Context, address, nonce string) (bool, error)
}

// ListingRepository persists listings.
type ListingRepository interface {
	Add(ctx context.Context, listing *core.Listing) error
	Get(ctx context.Context, id string) (*core.Listing, error)
	Update(ctx context.Context, listing *core.Listing) error
	Find(ctx context.Context, query ListListingsQuery) ([]core.Listing, error)

	// ActiveListingForTile returns the active listing for a tile, or nil.
	ActiveListingForTile(ctx context.Context, spaceID string, tokenID int64) (*core.Listing, error)
}

// Listing page bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ListListingsQuery filters and orders a listing page.
type ListListingsQuery struct {
	SpaceID string
	Status  core.ListingStatus
	Sort    string // newest | oldest | price_asc | price_desc
	Limit   int
	Offset  int
}

// OfferRepository persists offers.
type OfferRepository interface {
	Add(ctx context.Context, offer *core.Offer) error
	Get(ctx context.Context, id string) (*core.Offer, error)
	Update(ctx context.Context, offer *core.Offer) error
	Find(ctx context.Context, query ListOffersQuery) ([]core.Offer, error)

	// PendingByListing returns every pending offer on a listing.
	PendingByListing(ctx context.Context, listingID string) ([]core.Offer, error)
}

// ListOffersQuery filters an offer page. Results are always ordered by
// amount descending, ties broken by creation time ascending.
type ListOffersQuery struct {
	ListingID string
	Status    core.OfferStatus
	Offerer   string
}

// SpaceRepository persists spaces and their tiles.
type SpaceRepository interface {
	AddSpace(ctx context.Context, space *core.Space) error
	GetSpace(ctx context.Context, spaceID string) (*core.Space, error)
	UpdateSpace(ctx context.Context, space *core.Space) error
	DeleteSpace(ctx context.Context, spaceID string) error
	ListSpaces(ctx context.Context) ([]core.Space, error)

	AddTile(ctx context.Context, tile *core.Tile) error
	GetTile(ctx context.Context, spaceID string, tokenID int64) (*core.Tile, error)
	UpdateTile(ctx context.Context, tile *core.Tile) error
	ListTiles(ctx context.Context, spaceID string) ([]core.Tile, error)
	CountTiles(ctx context.Context, spaceID string) (int, error)
}

// RepoManager gives access to every repository and to the storage layer's
// transactional primitive. The handler passed to RunTransaction observes a
// consistent snapshot; its writes commit atomically or not at all. The
// implementation may abort the whole transaction on write contention, in
// which case the caller retries a bounded number of times.
type RepoManager interface {
	Listings() ListingRepository
	Offers() OfferRepository
	Spaces() SpaceRepository

	RunTransaction(ctx context.Context, readOnly bool, handler func(ctx context.Context) error) error

	// IsConflict reports whether err is the storage layer's write-contention
	// signal, meaning the transaction may be retried.
	IsConflict(err error) bool

	Close() error
}

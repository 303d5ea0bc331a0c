package store

import (
	"context"
	"sort"
	"sync"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

type memTxKey struct{}

// MemoryManager is the in-memory twin of BadgerManager, intended for tests
// and local development only. Atomicity comes from a process-wide lock, so
// it must never back more than one service instance.
type MemoryManager struct {
	mtx sync.RWMutex

	listings map[string]core.Listing
	offers   map[string]core.Offer
	spaces   map[string]core.Space
	tiles    map[string]core.Tile
}

// NewMemoryManager creates an empty in-memory repo manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		listings: make(map[string]core.Listing),
		offers:   make(map[string]core.Offer),
		spaces:   make(map[string]core.Space),
		tiles:    make(map[string]core.Tile),
	}
}

func (m *MemoryManager) Listings() ports.ListingRepository {
	return memoryListingRepository{m: m}
}

func (m *MemoryManager) Offers() ports.OfferRepository {
	return memoryOfferRepository{m: m}
}

func (m *MemoryManager) Spaces() ports.SpaceRepository {
	return memorySpaceRepository{m: m}
}

// RunTransaction serializes the handler behind the manager's write lock.
// Repository calls inside the handler detect the marker in the context and
// skip re-locking.
func (m *MemoryManager) RunTransaction(ctx context.Context, readOnly bool, handler func(ctx context.Context) error) error {
	if readOnly {
		m.mtx.RLock()
		defer m.mtx.RUnlock()
	} else {
		m.mtx.Lock()
		defer m.mtx.Unlock()
	}
	return handler(context.WithValue(ctx, memTxKey{}, struct{}{}))
}

// IsConflict always reports false: the lock serializes writers, so there is
// never contention to retry.
func (m *MemoryManager) IsConflict(err error) bool {
	return false
}

func (m *MemoryManager) Close() error {
	return nil
}

func inMemTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

func (m *MemoryManager) rlock(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	m.mtx.RLock()
	return m.mtx.RUnlock
}

func (m *MemoryManager) lock(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	m.mtx.Lock()
	return m.mtx.Unlock
}

type memoryListingRepository struct {
	m *MemoryManager
}

func (r memoryListingRepository) Add(ctx context.Context, listing *core.Listing) error {
	defer r.m.lock(ctx)()
	r.m.listings[listing.ID] = *listing
	return nil
}

func (r memoryListingRepository) Get(ctx context.Context, id string) (*core.Listing, error) {
	defer r.m.rlock(ctx)()
	listing, ok := r.m.listings[id]
	if !ok {
		return nil, core.ErrNotFound("listing not found")
	}
	return &listing, nil
}

func (r memoryListingRepository) Update(ctx context.Context, listing *core.Listing) error {
	defer r.m.lock(ctx)()
	if _, ok := r.m.listings[listing.ID]; !ok {
		return core.ErrNotFound("listing not found")
	}
	r.m.listings[listing.ID] = *listing
	return nil
}

func (r memoryListingRepository) Find(ctx context.Context, q ports.ListListingsQuery) ([]core.Listing, error) {
	defer r.m.rlock(ctx)()

	listings := []core.Listing{}
	for _, l := range r.m.listings {
		if q.SpaceID != "" && l.SpaceID != q.SpaceID {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		listings = append(listings, l)
	}

	sortListings(listings, q.Sort)
	return paginate(listings, q.Limit, q.Offset), nil
}

func (r memoryListingRepository) ActiveListingForTile(ctx context.Context, spaceID string, tokenID int64) (*core.Listing, error) {
	defer r.m.rlock(ctx)()
	for _, l := range r.m.listings {
		if l.SpaceID == spaceID && l.TokenID == tokenID && l.Status == core.ListingStatusActive {
			listing := l
			return &listing, nil
		}
	}
	return nil, nil
}

type memoryOfferRepository struct {
	m *MemoryManager
}

func (r memoryOfferRepository) Add(ctx context.Context, offer *core.Offer) error {
	defer r.m.lock(ctx)()
	r.m.offers[offer.ID] = *offer
	return nil
}

func (r memoryOfferRepository) Get(ctx context.Context, id string) (*core.Offer, error) {
	defer r.m.rlock(ctx)()
	offer, ok := r.m.offers[id]
	if !ok {
		return nil, core.ErrNotFound("offer not found")
	}
	return &offer, nil
}

func (r memoryOfferRepository) Update(ctx context.Context, offer *core.Offer) error {
	defer r.m.lock(ctx)()
	if _, ok := r.m.offers[offer.ID]; !ok {
		return core.ErrNotFound("offer not found")
	}
	r.m.offers[offer.ID] = *offer
	return nil
}

func (r memoryOfferRepository) Find(ctx context.Context, q ports.ListOffersQuery) ([]core.Offer, error) {
	defer r.m.rlock(ctx)()

	offerer := core.NormalizeWallet(q.Offerer)
	offers := []core.Offer{}
	for _, o := range r.m.offers {
		if q.ListingID != "" && o.ListingID != q.ListingID {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.Offerer != "" && o.OffererWallet != offerer {
			continue
		}
		offers = append(offers, o)
	}

	sortOffers(offers)
	return offers, nil
}

func (r memoryOfferRepository) PendingByListing(ctx context.Context, listingID string) ([]core.Offer, error) {
	defer r.m.rlock(ctx)()
	offers := []core.Offer{}
	for _, o := range r.m.offers {
		if o.ListingID == listingID && o.Status == core.OfferStatusPending {
			offers = append(offers, o)
		}
	}
	return offers, nil
}

type memorySpaceRepository struct {
	m *MemoryManager
}

func (r memorySpaceRepository) AddSpace(ctx context.Context, space *core.Space) error {
	defer r.m.lock(ctx)()
	r.m.spaces[space.ID] = *space
	return nil
}

func (r memorySpaceRepository) GetSpace(ctx context.Context, spaceID string) (*core.Space, error) {
	defer r.m.rlock(ctx)()
	for _, s := range r.m.spaces {
		if s.SpaceID == spaceID {
			space := s
			return &space, nil
		}
	}
	return nil, core.ErrNotFound("space not found")
}

func (r memorySpaceRepository) UpdateSpace(ctx context.Context, space *core.Space) error {
	defer r.m.lock(ctx)()
	if _, ok := r.m.spaces[space.ID]; !ok {
		return core.ErrNotFound("space not found")
	}
	r.m.spaces[space.ID] = *space
	return nil
}

func (r memorySpaceRepository) DeleteSpace(ctx context.Context, spaceID string) error {
	space, err := r.GetSpace(ctx, spaceID)
	if err != nil {
		return err
	}
	defer r.m.lock(ctx)()
	delete(r.m.spaces, space.ID)
	for id, t := range r.m.tiles {
		if t.SpaceID == spaceID {
			delete(r.m.tiles, id)
		}
	}
	return nil
}

func (r memorySpaceRepository) ListSpaces(ctx context.Context) ([]core.Space, error) {
	defer r.m.rlock(ctx)()
	spaces := []core.Space{}
	for _, s := range r.m.spaces {
		spaces = append(spaces, s)
	}
	sort.SliceStable(spaces, func(i, j int) bool {
		return spaces[i].CreatedAt.After(spaces[j].CreatedAt)
	})
	return spaces, nil
}

func (r memorySpaceRepository) AddTile(ctx context.Context, tile *core.Tile) error {
	defer r.m.lock(ctx)()
	r.m.tiles[tile.ID] = *tile
	return nil
}

func (r memorySpaceRepository) GetTile(ctx context.Context, spaceID string, tokenID int64) (*core.Tile, error) {
	defer r.m.rlock(ctx)()
	for _, t := range r.m.tiles {
		if t.SpaceID == spaceID && t.TokenID == tokenID {
			tile := t
			return &tile, nil
		}
	}
	return nil, core.ErrNotFound("tile not found")
}

func (r memorySpaceRepository) UpdateTile(ctx context.Context, tile *core.Tile) error {
	defer r.m.lock(ctx)()
	if _, ok := r.m.tiles[tile.ID]; !ok {
		return core.ErrNotFound("tile not found")
	}
	r.m.tiles[tile.ID] = *tile
	return nil
}

func (r memorySpaceRepository) ListTiles(ctx context.Context, spaceID string) ([]core.Tile, error) {
	defer r.m.rlock(ctx)()
	tiles := []core.Tile{}
	for _, t := range r.m.tiles {
		if t.SpaceID == spaceID {
			tiles = append(tiles, t)
		}
	}
	sort.SliceStable(tiles, func(i, j int) bool {
		return tiles[i].GridPosition < tiles[j].GridPosition
	})
	return tiles, nil
}

func (r memorySpaceRepository) CountTiles(ctx context.Context, spaceID string) (int, error) {
	tiles, err := r.ListTiles(ctx, spaceID)
	if err != nil {
		return 0, err
	}
	return len(tiles), nil
}

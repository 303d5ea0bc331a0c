package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/agorafi/marketplace/ports"
)

type txKey struct{}

// BadgerManager holds the badgerhold store and hands out the repositories
// backed by it. Transactions are carried through the context so repository
// methods inside RunTransaction observe and mutate the same snapshot.
type BadgerManager struct {
	store *badgerhold.Store

	listings ports.ListingRepository
	offers   ports.OfferRepository
	spaces   ports.SpaceRepository
}

// NewBadgerManager opens (or creates) the badger store. An empty dataDir
// opens the store in memory, which tests rely on.
func NewBadgerManager(dataDir string, logger badger.Logger) (*BadgerManager, error) {
	opts := badger.DefaultOptions(dataDir)
	if dataDir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = logger

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          jsonEncode,
		Decoder:          jsonDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	m := &BadgerManager{store: db}
	m.listings = listingRepository{store: db}
	m.offers = offerRepository{store: db}
	m.spaces = spaceRepository{store: db}
	return m, nil
}

func (m *BadgerManager) Listings() ports.ListingRepository {
	return m.listings
}

func (m *BadgerManager) Offers() ports.OfferRepository {
	return m.offers
}

func (m *BadgerManager) Spaces() ports.SpaceRepository {
	return m.spaces
}

// RunTransaction executes handler inside a single badger transaction.
// Badger runs serializable-snapshot isolation, so a concurrent commit that
// touched the same keys surfaces as ErrConflict here and the whole handler
// can be retried by the caller.
func (m *BadgerManager) RunTransaction(ctx context.Context, readOnly bool, handler func(ctx context.Context) error) error {
	tx := m.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	if err := handler(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if readOnly {
		return nil
	}
	return tx.Commit()
}

// IsConflict reports whether err is badger's write-contention signal.
func (m *BadgerManager) IsConflict(err error) bool {
	return errors.Is(err, badger.ErrConflict)
}

func (m *BadgerManager) Close() error {
	return m.store.Close()
}

func txFromContext(ctx context.Context) (*badger.Txn, bool) {
	tx, ok := ctx.Value(txKey{}).(*badger.Txn)
	return tx, ok
}

func jsonEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func jsonDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

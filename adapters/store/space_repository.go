package store

import (
	"context"
	"errors"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/agorafi/marketplace/core"
)

type spaceRepository struct {
	store *badgerhold.Store
}

func (r spaceRepository) AddSpace(ctx context.Context, space *core.Space) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxInsert(tx, space.ID, space)
	}
	return r.store.Insert(space.ID, space)
}

func (r spaceRepository) GetSpace(ctx context.Context, spaceID string) (*core.Space, error) {
	query := badgerhold.Where("SpaceID").Eq(spaceID)

	var spaces []core.Space
	if err := r.findSpaces(ctx, &spaces, query); err != nil {
		return nil, err
	}
	if len(spaces) == 0 {
		return nil, core.ErrNotFound("space not found")
	}
	return &spaces[0], nil
}

func (r spaceRepository) UpdateSpace(ctx context.Context, space *core.Space) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, space.ID, space)
	}
	return r.store.Update(space.ID, space)
}

func (r spaceRepository) DeleteSpace(ctx context.Context, spaceID string) error {
	space, err := r.GetSpace(ctx, spaceID)
	if err != nil {
		return err
	}

	tileQuery := badgerhold.Where("SpaceID").Eq(spaceID)
	if tx, ok := txFromContext(ctx); ok {
		if err := r.store.TxDeleteMatching(tx, &core.Tile{}, tileQuery); err != nil {
			return err
		}
		return r.store.TxDelete(tx, space.ID, &core.Space{})
	}
	if err := r.store.DeleteMatching(&core.Tile{}, tileQuery); err != nil {
		return err
	}
	return r.store.Delete(space.ID, &core.Space{})
}

func (r spaceRepository) ListSpaces(ctx context.Context) ([]core.Space, error) {
	spaces := []core.Space{}
	if err := r.findSpaces(ctx, &spaces, &badgerhold.Query{}); err != nil {
		return nil, err
	}
	sort.SliceStable(spaces, func(i, j int) bool {
		return spaces[i].CreatedAt.After(spaces[j].CreatedAt)
	})
	return spaces, nil
}

func (r spaceRepository) AddTile(ctx context.Context, tile *core.Tile) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxInsert(tx, tile.ID, tile)
	}
	return r.store.Insert(tile.ID, tile)
}

func (r spaceRepository) GetTile(ctx context.Context, spaceID string, tokenID int64) (*core.Tile, error) {
	query := badgerhold.Where("SpaceID").Eq(spaceID).And("TokenID").Eq(tokenID)

	var tiles []core.Tile
	if err := r.findTiles(ctx, &tiles, query); err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		return nil, core.ErrNotFound("tile not found")
	}
	return &tiles[0], nil
}

func (r spaceRepository) UpdateTile(ctx context.Context, tile *core.Tile) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxUpdate(tx, tile.ID, tile)
	}
	return r.store.Update(tile.ID, tile)
}

func (r spaceRepository) ListTiles(ctx context.Context, spaceID string) ([]core.Tile, error) {
	query := badgerhold.Where("SpaceID").Eq(spaceID)

	tiles := []core.Tile{}
	if err := r.findTiles(ctx, &tiles, query); err != nil {
		return nil, err
	}
	sort.SliceStable(tiles, func(i, j int) bool {
		return tiles[i].GridPosition < tiles[j].GridPosition
	})
	return tiles, nil
}

func (r spaceRepository) CountTiles(ctx context.Context, spaceID string) (int, error) {
	tiles, err := r.ListTiles(ctx, spaceID)
	if err != nil {
		return 0, err
	}
	return len(tiles), nil
}

func (r spaceRepository) findSpaces(ctx context.Context, result *[]core.Space, query *badgerhold.Query) error {
	err := r.findInto(ctx, result, query)
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return err
	}
	return nil
}

func (r spaceRepository) findTiles(ctx context.Context, result *[]core.Tile, query *badgerhold.Query) error {
	err := r.findInto(ctx, result, query)
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return err
	}
	return nil
}

func (r spaceRepository) findInto(ctx context.Context, result interface{}, query *badgerhold.Query) error {
	if tx, ok := txFromContext(ctx); ok {
		return r.store.TxFind(tx, result, query)
	}
	return r.store.Find(result, query)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agorafi/marketplace/core"
)

func TestCreateSpace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	space, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{
		SpaceID: "romania",
		Name:    "Romania",
	})
	require.NoError(t, err)
	require.Equal(t, "romania", space.SpaceID)
	require.Equal(t, sellerWallet, space.OwnerWallet)
	require.Equal(t, 100, space.MaxTiles)
	require.Contains(t, f.events.published(), EventSpaceCreated)
}

func TestCreateSpaceSlugConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "romania", Name: "Romania"})
	require.NoError(t, err)

	_, err = f.spaces.Create(ctx, otherWallet, CreateSpaceParams{SpaceID: "romania", Name: "Another"})
	require.EqualError(t, err, "a space with this id already exists")
	require.True(t, core.IsCode(err, core.CodeConflict))
}

func TestCreateSpaceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "Bad Slug!", Name: "X"})
	require.True(t, core.IsCode(err, core.CodeValidation))

	_, err = f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "ok", Name: ""})
	require.True(t, core.IsCode(err, core.CodeValidation))
}

func TestUpdateSpaceOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "romania", Name: "Romania"})
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.spaces.Update(ctx, "romania", otherWallet, UpdateSpaceParams{Name: &name})
	require.EqualError(t, err, "only the space owner can update this space")

	updated, err := f.spaces.Update(ctx, "romania", sellerWallet, UpdateSpaceParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	_, err = f.spaces.Update(ctx, "romania", sellerWallet, UpdateSpaceParams{})
	require.EqualError(t, err, "no fields to update")
}

func TestDeleteSpaceCascadesTiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "romania", Name: "Romania"})
	require.NoError(t, err)
	_, err = f.spaces.CreateTile(ctx, "romania", sellerWallet, CreateTileParams{TokenID: 1, GridPosition: 1})
	require.NoError(t, err)

	err = f.spaces.Delete(ctx, "romania", otherWallet)
	require.EqualError(t, err, "only the space owner can delete this space")

	require.NoError(t, f.spaces.Delete(ctx, "romania", sellerWallet))

	_, err = f.spaces.Get(ctx, "romania")
	require.True(t, core.IsCode(err, core.CodeNotFound))

	_, err = f.spaces.GetTile(ctx, "romania", 1)
	require.True(t, core.IsCode(err, core.CodeNotFound))
}

func TestTileManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.spaces.Create(ctx, sellerWallet, CreateSpaceParams{SpaceID: "romania", Name: "Romania", MaxTiles: 2})
	require.NoError(t, err)

	_, err = f.spaces.CreateTile(ctx, "romania", otherWallet, CreateTileParams{TokenID: 1})
	require.EqualError(t, err, "only the space owner can manage tiles")

	tile, err := f.spaces.CreateTile(ctx, "romania", sellerWallet, CreateTileParams{TokenID: 1, GridPosition: 5})
	require.NoError(t, err)
	require.Equal(t, 1, tile.Tier)

	_, err = f.spaces.CreateTile(ctx, "romania", sellerWallet, CreateTileParams{TokenID: 1, GridPosition: 6})
	require.EqualError(t, err, "a tile with this token id already exists")

	_, err = f.spaces.CreateTile(ctx, "romania", sellerWallet, CreateTileParams{TokenID: 2, GridPosition: 1})
	require.NoError(t, err)

	// The grid is capped at the space's max tiles.
	_, err = f.spaces.CreateTile(ctx, "romania", sellerWallet, CreateTileParams{TokenID: 3, GridPosition: 2})
	require.EqualError(t, err, "space is full")

	tiles, err := f.spaces.ListTiles(ctx, "romania")
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	// Ordered by grid position ascending.
	require.Equal(t, int64(1), tiles[0].GridPosition)
	require.Equal(t, int64(5), tiles[1].GridPosition)

	tier := 3
	updated, err := f.spaces.UpdateTile(ctx, "romania", 1, sellerWallet, UpdateTileParams{Tier: &tier})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Tier)

	info, err := f.spaces.Get(ctx, "romania")
	require.NoError(t, err)
	require.Equal(t, 2, info.TileCount)
}
